package store

import (
	"context"
	"fmt"
	"time"

	"github.com/veritag/veriqr-services/internal/verifysvc/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ScanStore is the append-only ledger of verification attempts. It has no
// read path here; analytics consumers query the collection directly.
type ScanStore struct {
	col *mongo.Collection
}

func NewScanStore(db *mongo.Database) *ScanStore {
	return &ScanStore{col: db.Collection("scanlogs")}
}

func (s *ScanStore) Append(ctx context.Context, entry *models.ScanLog) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if entry.ScannedAt.IsZero() {
		entry.ScannedAt = time.Now().UTC()
	}

	_, err := s.col.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("could not append scan log: %w", err)
	}
	return nil
}
