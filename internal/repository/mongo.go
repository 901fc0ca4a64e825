package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// cartDocument is the stored shape of a session cart. Prices are kept as
// decimal strings so they round-trip exactly.
type cartDocument struct {
	SessionID string         `bson:"session_id"`
	Lines     []lineDocument `bson:"lines"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

type lineDocument struct {
	ProductID int64  `bson:"product_id"`
	Title     string `bson:"title"`
	Price     string `bson:"price"`
	Image     string `bson:"image"`
	Quantity  int    `bson:"quantity"`
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *MongoRepository) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	var doc cartDocument
	err := m.collection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Cart{}, ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("failed to get cart: %w", err)
	}

	cart := domain.Cart{}
	for _, l := range doc.Lines {
		price, err := decimal.NewFromString(l.Price)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("invalid price for product %d: %w", l.ProductID, err)
		}
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID: l.ProductID,
			Title:     l.Title,
			Price:     price,
			Image:     l.Image,
			Quantity:  l.Quantity,
		})
	}
	return cart, nil
}

func (m *MongoRepository) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	now := time.Now()

	lines := make([]lineDocument, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, lineDocument{
			ProductID: l.ProductID,
			Title:     l.Title,
			Price:     l.Price.String(),
			Image:     l.Image,
			Quantity:  l.Quantity,
		})
	}

	filter := bson.M{"session_id": sessionID}
	update := bson.M{
		"$set": bson.M{
			"lines":      lines,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
