package service

import (
	"context"
	"errors"
	"time"

	"github.com/veritag/veriqr-services/internal/comm"
	"github.com/veritag/veriqr-services/internal/verifysvc/identifier"
	"github.com/veritag/veriqr-services/internal/verifysvc/models"
	"github.com/veritag/veriqr-services/internal/verifysvc/store"

	log "github.com/sirupsen/logrus"
)

const (
	ScanVerified  = "verified"
	ScanLastValid = "last_valid"
	ScanInvalid   = "invalid"
)

// Kind refines an invalid result for presentation (HTTP status mapping).
const (
	KindMalformed = "malformed"
	KindNotFound  = "not_found"
	KindExhausted = "exhausted"
)

// ScanResult is the verification response payload.
type ScanResult struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ProductId string `json:"productId,omitempty"`
	ScanCount int    `json:"scanCount,omitempty"`
	MaxScan   int    `json:"maxScan,omitempty"`

	Kind string `json:"-"`
}

// VerifyService runs the per-product scan state machine. The budget
// consumption itself is a single conditional update in the store, so two
// concurrent scans of the same product cannot both take the last unit.
type VerifyService struct {
	products ProductStore
	scans    ScanStore
	events   ScanEventPublisher
}

func NewVerifyService(products ProductStore, scans ScanStore, events ScanEventPublisher) *VerifyService {
	return &VerifyService{
		products: products,
		scans:    scans,
		events:   events,
	}
}

// Verify resolves one scan request. Malformed and unknown identifiers are
// ordinary invalid results, not errors; only store failures surface as error.
func (s *VerifyService) Verify(ctx context.Context, rawPID, sourceAddr string) (*ScanResult, error) {
	if !identifier.Valid(rawPID) {
		return &ScanResult{
			Status:  ScanInvalid,
			Kind:    KindMalformed,
			Message: "Invalid product ID",
		}, nil
	}

	// One retry covers the window where an admin status flip lands between
	// the conditional update and the follow-up read.
	for attempt := 0; attempt < 2; attempt++ {
		p, consumed, err := s.products.TryConsumeScan(ctx, rawPID)
		if err != nil {
			return nil, err
		}

		if consumed {
			s.recordAttempt(ctx, p.ProductId, sourceAddr, scanStatus(p))
			if p.ScanCount < p.MaxScan {
				return &ScanResult{
					Status:    ScanVerified,
					Message:   "✅ Product Verified Successfully",
					ProductId: p.ProductId,
					ScanCount: p.ScanCount,
					MaxScan:   p.MaxScan,
				}, nil
			}
			return &ScanResult{
				Status:    ScanLastValid,
				Message:   "⚠️ Last Valid Scan",
				ProductId: p.ProductId,
				ScanCount: p.ScanCount,
				MaxScan:   p.MaxScan,
			}, nil
		}

		p, err = s.products.FindByProductID(ctx, rawPID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return &ScanResult{
					Status:  ScanInvalid,
					Kind:    KindNotFound,
					Message: "❌ Invalid QR / Scan limit exceeded",
				}, nil
			}
			return nil, err
		}

		if p.Status == models.StatusActive && p.ScanCount < p.MaxScan {
			continue // became eligible again, take another shot
		}

		if p.Status != models.StatusInvalid && p.ScanCount >= p.MaxScan {
			// counter hit the budget but the status was never flipped
			if err := s.products.MarkInvalid(ctx, p.ProductId); err != nil {
				return nil, err
			}
		}

		s.recordAttempt(ctx, p.ProductId, sourceAddr, ScanInvalid)
		return &ScanResult{
			Status:    ScanInvalid,
			Kind:      KindExhausted,
			Message:   "❌ Invalid QR / Scan limit exceeded",
			ProductId: p.ProductId,
			ScanCount: p.ScanCount,
			MaxScan:   p.MaxScan,
		}, nil
	}

	// both consume attempts lost their race, report it exhausted
	return &ScanResult{
		Status:  ScanInvalid,
		Kind:    KindExhausted,
		Message: "❌ Invalid QR / Scan limit exceeded",
	}, nil
}

// recordAttempt appends the ledger row and publishes the scan event.
// Both are best-effort; neither failure alters the verification response.
func (s *VerifyService) recordAttempt(ctx context.Context, productID, sourceAddr, status string) {
	now := time.Now().UTC()

	if err := s.scans.Append(ctx, &models.ScanLog{
		ProductId: productID,
		IpAddress: sourceAddr,
		ScannedAt: now,
	}); err != nil {
		log.Warnf("scan log append failed for %s: %s", productID, err)
	}

	if s.events != nil {
		s.events.PublishScan(comm.ScanEvent{
			ProductId: productID,
			Status:    status,
			IpAddress: sourceAddr,
			ScannedAt: now,
		})
	}
}

func scanStatus(p *models.Product) string {
	if p.ScanCount < p.MaxScan {
		return ScanVerified
	}
	return ScanLastValid
}
