package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"

	"github.com/veritag/veriqr-services/internal/verifysvc/models"
	"github.com/veritag/veriqr-services/internal/verifysvc/qr"
)

// QRService materializes QR images for stored products.
type QRService struct {
	products ProductStore
	codec    *qr.Codec
}

func NewQRService(products ProductStore, codec *qr.Codec) *QRService {
	return &QRService{products: products, codec: codec}
}

// ProductPNG renders the QR image for one stored product.
// Returns store.ErrNotFound when the identifier is unknown.
func (s *QRService) ProductPNG(ctx context.Context, productID string) ([]byte, error) {
	p, err := s.products.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.codec.Encode(p.ProductId)
}

// BulkArchive streams a zip of QR images for the selected identifiers into w;
// an empty selection means every product. ErrNoProducts is returned before
// anything is written, so callers can still answer 404.
func (s *QRService) BulkArchive(ctx context.Context, productIDs []string, w io.Writer) (int, error) {
	var (
		products []*models.Product
		err      error
	)
	if len(productIDs) > 0 {
		products, err = s.products.FindByProductIDs(ctx, productIDs)
	} else {
		products, err = s.products.FindAll(ctx)
	}
	if err != nil {
		return 0, err
	}
	if len(products) == 0 {
		return 0, ErrNoProducts
	}

	zw := zip.NewWriter(w)
	for _, p := range products {
		pngData, err := s.codec.Encode(p.ProductId)
		if err != nil {
			return 0, fmt.Errorf("could not render QR for %s: %w", p.ProductId, err)
		}

		f, err := zw.Create(fmt.Sprintf("QR_%s.png", p.ProductId))
		if err != nil {
			return 0, err
		}
		if _, err := f.Write(pngData); err != nil {
			return 0, err
		}
	}

	return len(products), zw.Close()
}
