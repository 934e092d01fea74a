package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/veritag/veriqr-services/internal/verifysvc/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const opTimeout = 5 * time.Second

// readRetries bounds the retry loop on idempotent reads hitting a
// transient driver error.
const readRetries = 2

type ProductStore struct {
	col *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{col: db.Collection("products")}
}

// Create inserts a fresh product with a zero counter and the default scan
// budget. A collision on the unique productId index maps to ErrDuplicate.
func (s *ProductStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	p.ScanCount = 0
	if p.MaxScan <= 0 {
		p.MaxScan = models.DefaultMaxScan
	}
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("could not create product: %w", err)
	}

	return p, nil
}

func (s *ProductStore) FindByProductID(ctx context.Context, productID string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	p := &models.Product{}
	err := s.withReadRetry(ctx, func() error {
		return s.col.FindOne(ctx, bson.M{"productId": productID}).Decode(p)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("could not find product %s: %w", productID, err)
	}

	return p, nil
}

// List returns one page of products newest-first plus the total match count.
func (s *ProductStore) List(ctx context.Context, filter ListFilter, page, limit int) ([]*models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := bson.M{}
	if filter.Search != "" {
		pattern := regexp.QuoteMeta(filter.Search)
		query["$or"] = bson.A{
			bson.M{"productName": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"productId": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	var total int64
	var products []*models.Product
	err := s.withReadRetry(ctx, func() error {
		n, err := s.col.CountDocuments(ctx, query)
		if err != nil {
			return err
		}

		opts := options.Find().
			SetSort(bson.M{"createdAt": -1}).
			SetSkip(int64(page-1) * int64(limit)).
			SetLimit(int64(limit))

		cur, err := s.col.Find(ctx, query, opts)
		if err != nil {
			return err
		}

		var batch []*models.Product
		if err := cur.All(ctx, &batch); err != nil {
			return err
		}

		total = n
		products = batch
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("could not list products: %w", err)
	}

	if products == nil {
		products = []*models.Product{}
	}
	return products, total, nil
}

func (s *ProductStore) FindByProductIDs(ctx context.Context, productIDs []string) ([]*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := s.col.Find(ctx,
		bson.M{"productId": bson.M{"$in": productIDs}},
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, fmt.Errorf("could not find products: %w", err)
	}

	var products []*models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductStore) FindAll(ctx context.Context) ([]*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, fmt.Errorf("could not load products: %w", err)
	}

	var products []*models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SetStatus flips the administrative status without touching the counter.
// A product forced back to active keeps its scanCount, so an exhausted one
// fails its next scan immediately.
func (s *ProductStore) SetStatus(ctx context.Context, productID, status string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	p := &models.Product{}
	err := s.col.FindOneAndUpdate(ctx, bson.M{"productId": productID}, update, opts).Decode(p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("could not update product status: %w", err)
	}

	return p, nil
}

func (s *ProductStore) Delete(ctx context.Context, productID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.col.DeleteOne(ctx, bson.M{"productId": productID})
	if err != nil {
		return fmt.Errorf("could not delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TryConsumeScan atomically consumes one unit of scan budget. The filter and
// the pipeline update run as a single conditional operation on the record, so
// concurrent scans of the same product can never push scanCount past maxScan
// and exactly one caller observes the final increment. Returns false when no
// active under-budget record matched; the caller distinguishes missing from
// exhausted with a follow-up read.
func (s *ProductStore) TryConsumeScan(ctx context.Context, productID string) (*models.Product, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{
		"productId": productID,
		"status":    models.StatusActive,
		"$expr":     bson.M{"$lt": bson.A{"$scanCount", "$maxScan"}},
	}

	next := bson.M{"$add": bson.A{"$scanCount", 1}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"scanCount": next,
			"status": bson.M{"$cond": bson.A{
				bson.M{"$gte": bson.A{next, "$maxScan"}},
				models.StatusInvalid,
				"$status",
			}},
			"updatedAt": "$$NOW",
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	p := &models.Product{}
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("could not consume scan for %s: %w", productID, err)
	}

	return p, true, nil
}

// MarkInvalid corrects a product whose counter already reached the budget
// but whose status still says active.
func (s *ProductStore) MarkInvalid(ctx context.Context, productID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.col.UpdateOne(ctx,
		bson.M{"productId": productID, "status": models.StatusActive},
		bson.M{"$set": bson.M{"status": models.StatusInvalid, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("could not mark product invalid: %w", err)
	}
	return nil
}

func (s *ProductStore) withReadRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= readRetries; attempt++ {
		err = fn()
		if err == nil || errors.Is(err, mongo.ErrNoDocuments) || ctx.Err() != nil {
			return err
		}
		if !mongo.IsTimeout(err) && !mongo.IsNetworkError(err) {
			return err
		}
	}
	return err
}
