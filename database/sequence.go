package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrSequenceActive   = errors.New("a sequence is already active for this user")
	ErrNoActiveSequence = errors.New("no active sequence for this user")
)

// SequenceFile is one queued item of a sequence session: the filename
// drives the episode sort, the chat/message pair locates the original
// upload for redelivery.
type SequenceFile struct {
	FileName  string `bson:"file_name" json:"file_name"`
	ChatID    int64  `bson:"chat_id" json:"chat_id"`
	MessageID int32  `bson:"message_id" json:"message_id"`
}

type Sequence struct {
	UserID    int64          `bson:"user_id"`
	Active    bool           `bson:"active"`
	Files     []SequenceFile `bson:"files"`
	StartedAt time.Time      `bson:"started_at"`
	EndedAt   time.Time      `bson:"ended_at,omitempty"`
	Cancelled bool           `bson:"cancelled,omitempty"`
}

// StartSequence opens a collection session for the user. The partial
// unique index on active sessions makes this a test-and-set: a second
// start while one is active returns ErrSequenceActive.
func (d *DB) StartSequence(userID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := d.db.Collection("active_sequences").InsertOne(ctx, Sequence{
		UserID:    userID,
		Active:    true,
		Files:     []SequenceFile{},
		StartedAt: time.Now(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrSequenceActive
	}
	return err
}

func (d *DB) IsSequenceActive(userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := d.db.Collection("active_sequences").CountDocuments(ctx, bson.M{
		"user_id": userID,
		"active":  true,
	})
	return count > 0, err
}

// AppendSequenceFile atomically pushes one item onto the user's active
// session. The store serializes concurrent appends; there is no
// in-process read-modify-write.
func (d *DB) AppendSequenceFile(userID int64, file SequenceFile) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := d.db.Collection("active_sequences").UpdateOne(ctx,
		bson.M{"user_id": userID, "active": true},
		bson.M{"$push": bson.M{"files": file}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoActiveSequence
	}
	return nil
}

// EndSequence deactivates the user's session and returns the queued
// items in arrival order.
func (d *DB) EndSequence(userID int64) ([]SequenceFile, error) {
	return d.closeSequence(userID, false)
}

// CancelSequence deactivates the session and discards its items; the
// number of discarded items is returned.
func (d *DB) CancelSequence(userID int64) (int, error) {
	files, err := d.closeSequence(userID, true)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

func (d *DB) closeSequence(userID int64, cancelled bool) ([]SequenceFile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"active":    false,
		"ended_at":  time.Now(),
		"cancelled": cancelled,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var seq Sequence
	err := d.db.Collection("active_sequences").FindOneAndUpdate(ctx,
		bson.M{"user_id": userID, "active": true},
		update, opts,
	).Decode(&seq)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoActiveSequence
	}
	if err != nil {
		return nil, err
	}
	return seq.Files, nil
}

type LeaderboardEntry struct {
	UserID         int64  `bson:"user_id" json:"user_id"`
	Name           string `bson:"name" json:"name"`
	FilesSequenced int64  `bson:"files_sequenced" json:"files_sequenced"`
}

func (d *DB) IncrementSequenceCount(userID int64, name string, delta int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"files_sequenced": delta},
		"$set": bson.M{"name": name},
	}
	opts := options.Update().SetUpsert(true)
	_, err := d.db.Collection("leaderboard").UpdateOne(ctx, bson.M{"user_id": userID}, update, opts)
	return err
}

func (d *DB) TopSequencers(n int) ([]LeaderboardEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "files_sequenced", Value: -1}}).
		SetLimit(int64(n))

	cursor, err := d.db.Collection("leaderboard").Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []LeaderboardEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
