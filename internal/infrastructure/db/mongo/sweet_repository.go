package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

const collectionSweets = "sweets"

type SweetRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewSweetRepository(db *mongo.Database) *SweetRepository {
	return &SweetRepository{col: db.Collection(collectionSweets), now: time.Now}
}

type sweetDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Category  string             `bson:"category"`
	Price     float64            `bson:"price"`
	Quantity  int                `bson:"quantity"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *sweetDocument) toDomain() *domain.Sweet {
	return &domain.Sweet{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Category: domain.Category(d.Category),
		Price:    d.Price,
		Quantity: d.Quantity,
	}
}

func (r *SweetRepository) Create(ctx context.Context, in domain.SweetInput) (*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := r.now().UTC()
	doc := sweetDocument{
		ID:        primitive.NewObjectID(),
		Name:      in.Name,
		Category:  string(in.Category),
		Price:     in.Price,
		Quantity:  in.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert sweet: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SweetRepository) FindAll(ctx context.Context) ([]domain.Sweet, error) {
	return r.find(ctx, bson.M{})
}

// Search translates the filter into a single query. The name is matched as
// a literal, case-insensitive substring.
func (r *SweetRepository) Search(ctx context.Context, filter domain.SweetFilter) ([]domain.Sweet, error) {
	query := bson.M{}
	if filter.Name != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(filter.Name), "$options": "i"}
	}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}
	return r.find(ctx, query)
}

// find returns matches in insertion order. ObjectIDs lead with their
// creation second, so sorting on _id keeps that order.
func (r *SweetRepository) find(ctx context.Context, query bson.M) ([]domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find sweets: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]domain.Sweet, 0)
	for cur.Next(ctx) {
		var doc sweetDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode sweet: %w", err)
		}
		out = append(out, *doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate sweets: %w", err)
	}
	return out, nil
}

func (r *SweetRepository) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSweetNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc sweetDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSweetNotFound
		}
		return nil, fmt.Errorf("find sweet: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SweetRepository) Update(ctx context.Context, id string, in domain.SweetInput) (*domain.Sweet, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSweetNotFound
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"name":       in.Name,
			"category":   string(in.Category),
			"price":      in.Price,
			"quantity":   in.Quantity,
			"updated_at": r.now().UTC(),
		},
	})
}

func (r *SweetRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete sweet: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// Purchase is one conditional findOneAndUpdate: the quantity guard and the
// decrement are evaluated together by the server.
func (r *SweetRepository) Purchase(ctx context.Context, id string) (*domain.Sweet, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSweetNotFound
	}
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": oid, "quantity": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"quantity": -1},
			"$set": bson.M{"updated_at": r.now().UTC()},
		},
	)
}

// Restock increments only while the result stays within domain.MaxQuantity.
// A document that matched nothing is either missing or too full.
func (r *SweetRepository) Restock(ctx context.Context, id string, amount int) (*domain.Sweet, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSweetNotFound
	}
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": oid, "quantity": bson.M{"$lte": domain.MaxQuantity - amount}},
		bson.M{
			"$inc": bson.M{"quantity": amount},
			"$set": bson.M{"updated_at": r.now().UTC()},
		},
	)
}

func (r *SweetRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc sweetDocument
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSweetNotFound
		}
		return nil, fmt.Errorf("update sweet: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the indexes backing search.
func (r *SweetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
