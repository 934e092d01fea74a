package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/veritag/veriqr-services/internal/verifysvc/excel"
	"github.com/veritag/veriqr-services/internal/verifysvc/identifier"
	"github.com/veritag/veriqr-services/internal/verifysvc/models"
	"github.com/veritag/veriqr-services/internal/verifysvc/store"
)

// maxImportDiagnostics caps the error lines returned to the caller; every
// row is still processed and counted past the cap.
const maxImportDiagnostics = 10

// ImportSummary is the bulk import result.
type ImportSummary struct {
	TotalRows        int      `json:"totalRows"`
	Inserted         int      `json:"inserted"`
	SkippedInvalid   int      `json:"skippedInvalid"`
	SkippedDuplicate int      `json:"skippedDuplicate"`
	Errors           []string `json:"errors,omitempty"`
}

// ImportService reconciles parsed spreadsheet rows against the product
// store. No row failure aborts the batch.
type ImportService struct {
	products ProductStore
}

func NewImportService(products ProductStore) *ImportService {
	return &ImportService{products: products}
}

// Reconcile processes every row independently. Each row goes through the
// same atomic create path as single-product creation, so a duplicate racing
// in from anywhere lands as skippedDuplicate rather than an error. Rows that
// were not reached before ctx was cancelled stay uncounted.
func (s *ImportService) Reconcile(ctx context.Context, rows []excel.Row) (*ImportSummary, error) {
	summary := &ImportSummary{TotalRows: len(rows)}
	var diags []string

loop:
	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}

		if row.ProductId == "" {
			summary.SkippedInvalid++
			diags = append(diags, fmt.Sprintf("Row %d: Missing product_id", row.Number))
			continue
		}

		if row.ProductName == "" {
			summary.SkippedInvalid++
			diags = append(diags, fmt.Sprintf("Row %d: Missing product_name", row.Number))
			continue
		}

		if !identifier.Valid(row.ProductId) {
			summary.SkippedInvalid++
			diags = append(diags, fmt.Sprintf(
				"Row %d: Invalid product_id format (must be exactly 16 digits, got: %d digits)",
				row.Number, len(row.ProductId)))
			continue
		}

		_, err := s.products.Create(ctx, &models.Product{
			ProductId:   row.ProductId,
			ProductName: row.ProductName,
		})
		switch {
		case err == nil:
			summary.Inserted++
		case errors.Is(err, store.ErrDuplicate):
			summary.SkippedDuplicate++
		default:
			if ctx.Err() != nil {
				// aborted mid-create; the insert either landed wholly or
				// not at all, but we no longer know which, so stop counting
				break loop
			}
			summary.SkippedInvalid++
			diags = append(diags, fmt.Sprintf("Row %d: %s", row.Number, err))
		}
	}

	if len(diags) > maxImportDiagnostics {
		diags = diags[:maxImportDiagnostics]
	}
	summary.Errors = diags

	return summary, nil
}
