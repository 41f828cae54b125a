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
	"github.com/oceanflame/fishpond/internal/core/ports"
)

const couponsCollection = "coupons"

type CouponRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
	fish *mongo.Collection
	user *mongo.Collection
}

func NewCouponRepository(db *mongo.Database) *CouponRepository {
	return &CouponRepository{
		db:   db,
		coll: db.Collection(couponsCollection),
		fish: db.Collection(fishCollection),
		user: db.Collection(usersCollection),
	}
}

type couponDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Code      string             `bson:"code"`
	FishType  string             `bson:"fish_type"`
	Value     int                `bson:"value"`
	Used      bool               `bson:"used"`
	UsedAt    *time.Time         `bson:"used_at,omitempty"`
	UsedBy    string             `bson:"used_by,omitempty"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d *couponDoc) toDomain() *domain.Coupon {
	return &domain.Coupon{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Code:      d.Code,
		FishType:  domain.FishType(d.FishType),
		Value:     d.Value,
		Used:      d.Used,
		UsedAt:    d.UsedAt,
		UsedBy:    d.UsedBy,
		ExpiresAt: d.ExpiresAt,
		CreatedAt: d.CreatedAt,
	}
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var doc couponDoc
	if err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, fmt.Errorf("find coupon: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CouponRepository) ListByUser(ctx context.Context, userID string, unusedOnly bool) ([]*domain.Coupon, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	filter := bson.M{"user_id": userOID}
	if unusedOnly {
		filter["used"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer cursor.Close(ctx)

	coupons := make([]*domain.Coupon, 0)
	for cursor.Next(ctx) {
		var doc couponDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode coupon: %w", err)
		}
		coupons = append(coupons, doc.toDomain())
	}
	return coupons, cursor.Err()
}

// IssueForHarvest runs mint, fish removal, and the owner's lifetime counter
// increment inside one session transaction. Any failure aborts the whole
// set; a duplicate code surfaces as domain.ErrCodeCollision so the issuer
// can regenerate and retry.
func (r *CouponRepository) IssueForHarvest(ctx context.Context, coupon *domain.Coupon, fishID string) (*domain.Coupon, error) {
	userOID, err := primitive.ObjectIDFromHex(coupon.UserID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	fishOID, err := primitive.ObjectIDFromHex(fishID)
	if err != nil {
		return nil, domain.ErrFishNotFound
	}

	doc := couponDoc{
		UserID:    userOID,
		Code:      coupon.Code,
		FishType:  string(coupon.FishType),
		Value:     coupon.Value,
		Used:      false,
		ExpiresAt: coupon.ExpiresAt,
		CreatedAt: coupon.CreatedAt,
	}

	session, err := r.db.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	insertedID, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.coll.InsertOne(sc, doc)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrCodeCollision
			}
			return nil, fmt.Errorf("insert coupon: %w", err)
		}

		del, err := r.fish.DeleteOne(sc, bson.M{"_id": fishOID})
		if err != nil {
			return nil, fmt.Errorf("delete fish: %w", err)
		}
		if del.DeletedCount == 0 {
			// Fish vanished between validation and commit (e.g. a
			// concurrent harvest); abort so no coupon is double-issued.
			return nil, domain.ErrFishNotFound
		}

		if _, err := r.user.UpdateOne(sc,
			bson.M{"_id": userOID},
			bson.M{"$inc": bson.M{"total_coupons_earned": 1}},
		); err != nil {
			return nil, fmt.Errorf("increment coupon counter: %w", err)
		}

		return res.InsertedID, nil
	})
	if err != nil {
		return nil, err
	}

	doc.ID = insertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// MarkUsed is the conditional "set used where used=false" write that gives
// redemption its exactly-once guarantee. A code with no unused match
// returns domain.ErrCouponNotFound.
func (r *CouponRepository) MarkUsed(ctx context.Context, code string, staffUsername string, at time.Time) (*domain.Coupon, error) {
	filter := bson.M{"code": code, "used": false}
	update := bson.M{"$set": bson.M{
		"used":    true,
		"used_at": at,
		"used_by": staffUsername,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc couponDoc
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, fmt.Errorf("mark coupon used: %w", err)
	}
	return doc.toDomain(), nil
}

// Totals aggregates issuance and redemption counters in a single pipeline.
func (r *CouponRepository) Totals(ctx context.Context) (*ports.CouponTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"total_issued": bson.M{"$sum": 1},
			"total_used":   bson.M{"$sum": bson.M{"$cond": bson.A{"$used", 1, 0}}},
			"value_issued": bson.M{"$sum": "$value"},
			"value_used":   bson.M{"$sum": bson.M{"$cond": bson.A{"$used", "$value", 0}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate coupons: %w", err)
	}
	defer cursor.Close(ctx)

	var row struct {
		TotalIssued int64 `bson:"total_issued"`
		TotalUsed   int64 `bson:"total_used"`
		ValueIssued int64 `bson:"value_issued"`
		ValueUsed   int64 `bson:"value_used"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode totals: %w", err)
		}
	}

	return &ports.CouponTotals{
		TotalIssued:      row.TotalIssued,
		TotalUsed:        row.TotalUsed,
		TotalValueIssued: row.ValueIssued,
		TotalValueUsed:   row.ValueUsed,
	}, nil
}

// EnsureIndexes creates the unique code index redemption depends on.
func (r *CouponRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
