package database

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

var durationSpecRe = regexp.MustCompile(`^(\d+)(m|h|d|w|mo|y)$`)

// ParsePremiumDuration turns a duration spec like "30d", "6h", "2mo"
// into a time.Duration. Units: m minutes, h hours, d days, w weeks,
// mo months (30 days), y years (365 days).
func ParsePremiumDuration(spec string) (time.Duration, error) {
	m := durationSpecRe.FindStringSubmatch(spec)
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q, expected forms like 30m, 6h, 30d, 2w, 2mo, 1y", spec)
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid duration amount %q", m[1])
	}

	switch m[2] {
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "w":
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case "mo":
		return time.Duration(n) * 30 * 24 * time.Hour, nil
	case "y":
		return time.Duration(n) * 365 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unknown duration unit %q", m[2])
}

// AddPremium extends the user's premium entitlement by the given spec
// and returns the new expiry. An entitlement still in the future is
// extended from its expiry, not from now.
func (d *DB) AddPremium(userID int64, spec string) (time.Time, error) {
	dur, err := ParsePremiumDuration(spec)
	if err != nil {
		return time.Time{}, err
	}

	base := time.Now()
	if u, err := d.getUser(userID); err != nil {
		return time.Time{}, err
	} else if u != nil && u.PremiumExpiry.After(base) {
		base = u.PremiumExpiry
	}

	expiry := base.Add(dur)
	if err := d.setUserField(userID, "premium_expiry", expiry); err != nil {
		return time.Time{}, err
	}
	return expiry, nil
}

func (d *DB) IsPremium(userID int64) (bool, error) {
	u, err := d.getUser(userID)
	if err != nil || u == nil {
		return false, err
	}
	return u.PremiumExpiry.After(time.Now()), nil
}

// GetPremiumExpiry returns the expiry and whether the user currently
// holds a premium entitlement.
func (d *DB) GetPremiumExpiry(userID int64) (time.Time, bool, error) {
	u, err := d.getUser(userID)
	if err != nil || u == nil {
		return time.Time{}, false, err
	}
	return u.PremiumExpiry, u.PremiumExpiry.After(time.Now()), nil
}

// RemovePremium drops the user's entitlement. It reports whether a
// document was actually modified.
func (d *DB) RemovePremium(userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := d.db.Collection("users").UpdateOne(ctx,
		bson.M{"user_id": userID, "premium_expiry": bson.M{"$exists": true}},
		bson.M{
			"$unset": bson.M{"premium_expiry": ""},
			"$set":   bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
