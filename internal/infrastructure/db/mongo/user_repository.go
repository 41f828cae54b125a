package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oceanflame/fishpond/internal/core/domain"
)

const usersCollection = "users"

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type userDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	OpenID             string             `bson:"openid,omitempty"`
	Phone              string             `bson:"phone,omitempty"`
	Username           string             `bson:"username"`
	Avatar             string             `bson:"avatar,omitempty"`
	DailyFeedCount     int                `bson:"daily_feed_count"`
	LastFeedDate       string             `bson:"last_feed_date,omitempty"`
	TotalCouponsEarned int                `bson:"total_coupons_earned"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:                 d.ID.Hex(),
		OpenID:             d.OpenID,
		Phone:              d.Phone,
		Username:           d.Username,
		Avatar:             d.Avatar,
		DailyFeedCount:     d.DailyFeedCount,
		LastFeedDate:       d.LastFeedDate,
		TotalCouponsEarned: d.TotalCouponsEarned,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := userDoc{
		OpenID:             user.OpenID,
		Phone:              user.Phone,
		Username:           user.Username,
		Avatar:             user.Avatar,
		DailyFeedCount:     user.DailyFeedCount,
		LastFeedDate:       user.LastFeedDate,
		TotalCouponsEarned: user.TotalCouponsEarned,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// ResetDailyFeed resets the quota when the stored date differs from today.
// The date filter makes the write idempotent within a day.
func (r *UserRepository) ResetDailyFeed(ctx context.Context, id string, today string, limit int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	filter := bson.M{"_id": oid, "last_feed_date": bson.M{"$ne": today}}
	update := bson.M{"$set": bson.M{
		"daily_feed_count": limit,
		"last_feed_date":   today,
		"updated_at":       time.Now().UTC(),
	}}

	_, err = r.coll.UpdateOne(ctx, filter, update)
	return err
}

// ConsumeFeed decrements the quota with a single conditional update, so
// concurrent feeds racing for the last unit serialize on the document.
func (r *UserRepository) ConsumeFeed(ctx context.Context, id string) (int, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, domain.ErrUserNotFound
	}

	filter := bson.M{"_id": oid, "daily_feed_count": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"daily_feed_count": -1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the user is gone or the quota is spent.
			if _, ferr := r.FindByID(ctx, id); ferr != nil {
				return 0, ferr
			}
			return 0, domain.ErrQuotaExhausted
		}
		return 0, fmt.Errorf("consume feed: %w", err)
	}
	return doc.DailyFeedCount, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates the uniqueness constraints on external identifiers.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "openid", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
