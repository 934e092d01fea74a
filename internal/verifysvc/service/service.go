package service

import (
	"context"
	"errors"

	"github.com/veritag/veriqr-services/internal/comm"
	"github.com/veritag/veriqr-services/internal/verifysvc/models"
	"github.com/veritag/veriqr-services/internal/verifysvc/store"
)

var (
	// ErrInvalidInput covers malformed identifiers and missing required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoProducts means a bulk QR request resolved to an empty product set.
	ErrNoProducts = errors.New("no products found")
)

// ProductStore is the persistence surface the services depend on. The mongo
// implementation lives in the store package; tests substitute in-memory fakes.
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	FindByProductID(ctx context.Context, productID string) (*models.Product, error)
	List(ctx context.Context, filter store.ListFilter, page, limit int) ([]*models.Product, int64, error)
	FindByProductIDs(ctx context.Context, productIDs []string) ([]*models.Product, error)
	FindAll(ctx context.Context) ([]*models.Product, error)
	SetStatus(ctx context.Context, productID, status string) (*models.Product, error)
	Delete(ctx context.Context, productID string) error
	TryConsumeScan(ctx context.Context, productID string) (*models.Product, bool, error)
	MarkInvalid(ctx context.Context, productID string) error
}

// ScanStore is the append-only verification attempt ledger.
type ScanStore interface {
	Append(ctx context.Context, entry *models.ScanLog) error
}

// ScanEventPublisher pushes scan events to downstream analytics consumers.
type ScanEventPublisher interface {
	PublishScan(event comm.ScanEvent)
}
