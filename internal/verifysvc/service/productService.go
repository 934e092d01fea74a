package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/veritag/veriqr-services/internal/verifysvc/identifier"
	"github.com/veritag/veriqr-services/internal/verifysvc/models"
	"github.com/veritag/veriqr-services/internal/verifysvc/store"
)

// ProductService wraps the administrative product operations.
type ProductService struct {
	products ProductStore
}

func NewProductService(products ProductStore) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) CreateProduct(ctx context.Context, productID, productName string) (*models.Product, error) {
	productName = strings.TrimSpace(productName)

	if productID == "" || productName == "" {
		return nil, fmt.Errorf("%w: productId and productName are required", ErrInvalidInput)
	}
	if !identifier.Valid(productID) {
		return nil, fmt.Errorf("%w: productId must be exactly 16 digits", ErrInvalidInput)
	}

	return s.products.Create(ctx, &models.Product{
		ProductId:   productID,
		ProductName: productName,
	})
}

func (s *ProductService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	if !identifier.Valid(productID) {
		return nil, fmt.Errorf("%w: invalid product ID format", ErrInvalidInput)
	}
	return s.products.FindByProductID(ctx, productID)
}

func (s *ProductService) ListProducts(ctx context.Context, filter store.ListFilter, page, limit int) ([]*models.Product, int64, error) {
	return s.products.List(ctx, filter, page, limit)
}

// UpdateStatus is the administrative override. It leaves scanCount alone,
// so reactivating an exhausted product does not grant new scans.
func (s *ProductService) UpdateStatus(ctx context.Context, productID, status string) (*models.Product, error) {
	if status != models.StatusActive && status != models.StatusInvalid {
		return nil, fmt.Errorf("%w: status must be %q or %q", ErrInvalidInput, models.StatusActive, models.StatusInvalid)
	}
	return s.products.SetStatus(ctx, productID, status)
}

func (s *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	return s.products.Delete(ctx, productID)
}
