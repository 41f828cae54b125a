package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oceanflame/fishpond/internal/core/domain"
)

const fishCollection = "fish"

type FishRepository struct {
	coll *mongo.Collection
}

func NewFishRepository(db *mongo.Database) *FishRepository {
	return &FishRepository{coll: db.Collection(fishCollection)}
}

type fishDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Type      string             `bson:"fish_type"`
	Status    string             `bson:"status"`
	Hunger    float64            `bson:"hunger"`
	Health    float64            `bson:"health"`
	Growth    float64            `bson:"growth"`
	PosX      float64            `bson:"pos_x"`
	PosY      float64            `bson:"pos_y"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *fishDoc) toDomain() *domain.Fish {
	return &domain.Fish{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Type:      domain.FishType(d.Type),
		Status:    domain.FishStatus(d.Status),
		Hunger:    d.Hunger,
		Health:    d.Health,
		Growth:    d.Growth,
		PosX:      d.PosX,
		PosY:      d.PosY,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *FishRepository) Create(ctx context.Context, fish *domain.Fish) (*domain.Fish, error) {
	userOID, err := primitive.ObjectIDFromHex(fish.UserID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	doc := fishDoc{
		UserID:    userOID,
		Type:      string(fish.Type),
		Status:    string(fish.Status),
		Hunger:    fish.Hunger,
		Health:    fish.Health,
		Growth:    fish.Growth,
		PosX:      fish.PosX,
		PosY:      fish.PosY,
		CreatedAt: fish.CreatedAt,
		UpdatedAt: fish.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert fish: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *FishRepository) FindByID(ctx context.Context, id string) (*domain.Fish, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrFishNotFound
	}

	var doc fishDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrFishNotFound
		}
		return nil, fmt.Errorf("find fish: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *FishRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Fish, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userOID})
	if err != nil {
		return nil, fmt.Errorf("list fish: %w", err)
	}
	defer cursor.Close(ctx)

	fishes := make([]*domain.Fish, 0)
	for cursor.Next(ctx) {
		var doc fishDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode fish: %w", err)
		}
		fishes = append(fishes, doc.toDomain())
	}
	return fishes, cursor.Err()
}

func (r *FishRepository) Update(ctx context.Context, fish *domain.Fish) error {
	oid, err := primitive.ObjectIDFromHex(fish.ID)
	if err != nil {
		return domain.ErrFishNotFound
	}

	update := bson.M{"$set": bson.M{
		"status":     string(fish.Status),
		"hunger":     fish.Hunger,
		"health":     fish.Health,
		"growth":     fish.Growth,
		"updated_at": fish.UpdatedAt,
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update fish: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrFishNotFound
	}
	return nil
}

func (r *FishRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates the owner index used by ListByUser.
func (r *FishRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	return err
}
