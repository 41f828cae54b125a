package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oceanflame/fishpond/internal/core/domain"
)

const feedingsCollection = "feeding_records"

// FeedingRepository appends feed audit rows; nothing ever updates them.
type FeedingRepository struct {
	coll *mongo.Collection
}

func NewFeedingRepository(db *mongo.Database) *FeedingRepository {
	return &FeedingRepository{coll: db.Collection(feedingsCollection)}
}

func (r *FeedingRepository) Insert(ctx context.Context, record *domain.FeedingRecord) error {
	userOID, err := primitive.ObjectIDFromHex(record.UserID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	fishOID, err := primitive.ObjectIDFromHex(record.FishID)
	if err != nil {
		return domain.ErrFishNotFound
	}

	doc := bson.M{
		"user_id":    userOID,
		"fish_id":    fishOID,
		"created_at": record.CreatedAt,
	}
	if record.IPAddress != "" {
		doc["ip_address"] = record.IPAddress
	}
	if record.UserAgent != "" {
		doc["user_agent"] = record.UserAgent
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert feeding record: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup index used by anti-abuse analysis.
func (r *FeedingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
