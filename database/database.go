package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

func Init(mongoURL, dbName string) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	database := &DB{
		client: client,
		db:     client.Database(dbName),
	}

	if err := database.createIndexes(ctx); err != nil {
		return nil, err
	}

	log.Printf("MongoDB connected: %s/%s", mongoURL, dbName)
	return database, nil
}

func (d *DB) createIndexes(ctx context.Context) error {
	usersCollection := d.db.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := usersCollection.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return err
	}

	// The partial unique index is the test-and-set guard for sequence
	// sessions: inserting a second active session for the same user
	// fails with a duplicate key error even across process instances.
	sequencesCollection := d.db.Collection("active_sequences")
	sequenceIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
	}
	if _, err := sequencesCollection.Indexes().CreateMany(ctx, sequenceIndexes); err != nil {
		return err
	}

	leaderboardCollection := d.db.Collection("leaderboard")
	leaderboardIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "files_sequenced", Value: -1}},
		},
	}
	_, err := leaderboardCollection.Indexes().CreateMany(ctx, leaderboardIndexes)
	return err
}

func (d *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          int64              `bson:"user_id" json:"user_id"`
	Username        string             `bson:"username" json:"username"`
	FirstName       string             `bson:"first_name" json:"first_name"`
	FormatTemplate  string             `bson:"format_template,omitempty" json:"format_template,omitempty"`
	Caption         string             `bson:"caption,omitempty" json:"caption,omitempty"`
	MediaPreference string             `bson:"media_preference,omitempty" json:"media_preference,omitempty"`
	Thumbnail       string             `bson:"thumbnail,omitempty" json:"-"`
	PremiumExpiry   time.Time          `bson:"premium_expiry,omitempty" json:"premium_expiry,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

func (d *DB) AddUser(userID int64, username, firstName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	collection := d.db.Collection("users")

	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$set": bson.M{
			"username":   username,
			"first_name": firstName,
			"updated_at": time.Now(),
		},
		"$setOnInsert": bson.M{
			"created_at": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (d *DB) getUser(userID int64) (*User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var u User
	err := d.db.Collection("users").FindOne(ctx, bson.M{"user_id": userID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// setUserField upserts a single settings field on the user document.
func (d *DB) setUserField(userID int64, field string, value any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			field:        value,
			"updated_at": time.Now(),
		},
		"$setOnInsert": bson.M{
			"created_at": time.Now(),
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := d.db.Collection("users").UpdateOne(ctx, bson.M{"user_id": userID}, update, opts)
	return err
}

func (d *DB) unsetUserField(userID int64, field string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$unset": bson.M{field: ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}
	_, err := d.db.Collection("users").UpdateOne(ctx, bson.M{"user_id": userID}, update)
	return err
}

func (d *DB) GetFormatTemplate(userID int64) (string, error) {
	u, err := d.getUser(userID)
	if err != nil || u == nil {
		return "", err
	}
	return u.FormatTemplate, nil
}

func (d *DB) SetFormatTemplate(userID int64, template string) error {
	return d.setUserField(userID, "format_template", template)
}

func (d *DB) GetCaption(chatID int64) (string, error) {
	u, err := d.getUser(chatID)
	if err != nil || u == nil {
		return "", err
	}
	return u.Caption, nil
}

func (d *DB) SetCaption(chatID int64, caption string) error {
	return d.setUserField(chatID, "caption", caption)
}

func (d *DB) DeleteCaption(chatID int64) error {
	return d.unsetUserField(chatID, "caption")
}

func (d *DB) GetMediaPreference(userID int64) (string, error) {
	u, err := d.getUser(userID)
	if err != nil || u == nil {
		return "", err
	}
	return u.MediaPreference, nil
}

func (d *DB) SetMediaPreference(userID int64, kind string) error {
	return d.setUserField(userID, "media_preference", kind)
}

func (d *DB) GetThumbnail(chatID int64) (string, error) {
	u, err := d.getUser(chatID)
	if err != nil || u == nil {
		return "", err
	}
	return u.Thumbnail, nil
}

func (d *DB) SetThumbnail(chatID int64, fileID string) error {
	return d.setUserField(chatID, "thumbnail", fileID)
}

func (d *DB) DeleteThumbnail(chatID int64) error {
	return d.unsetUserField(chatID, "thumbnail")
}

type DBStats struct {
	TotalUsers      int64 `json:"total_users"`
	PremiumUsers    int64 `json:"premium_users"`
	ActiveSequences int64 `json:"active_sequences"`
	FilesSequenced  int64 `json:"files_sequenced"`
}

func (d *DB) GetStats() (*DBStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats := &DBStats{}

	totalUsers, err := d.db.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats.TotalUsers = totalUsers

	premiumUsers, err := d.db.Collection("users").CountDocuments(ctx, bson.M{
		"premium_expiry": bson.M{"$gt": time.Now()},
	})
	if err != nil {
		return nil, err
	}
	stats.PremiumUsers = premiumUsers

	activeSequences, err := d.db.Collection("active_sequences").CountDocuments(ctx, bson.M{"active": true})
	if err != nil {
		return nil, err
	}
	stats.ActiveSequences = activeSequences

	cursor, err := d.db.Collection("leaderboard").Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$files_sequenced"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var totals []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, err
	}
	if len(totals) > 0 {
		stats.FilesSequenced = totals[0].Total
	}

	return stats, nil
}
