package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/veritag/veriqr-services/internal/comm"
	"github.com/veritag/veriqr-services/internal/verifysvc/models"
	"github.com/veritag/veriqr-services/internal/verifysvc/store"
)

// fakeProductStore mirrors the mongo store's contract in memory. The mutex
// around TryConsumeScan plays the role of the per-record conditional update.
type fakeProductStore struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[string]*models.Product{}}
}

func (f *fakeProductStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.products[p.ProductId]; exists {
		return nil, store.ErrDuplicate
	}

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

	cp := *p
	f.products[p.ProductId] = &cp
	return p, nil
}

func (f *fakeProductStore) FindByProductID(ctx context.Context, productID string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductStore) List(ctx context.Context, filter store.ListFilter, page, limit int) ([]*models.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*models.Product
	for _, p := range f.products {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(p.ProductName), s) &&
				!strings.Contains(p.ProductId, s) {
				continue
			}
		}
		cp := *p
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeProductStore) FindByProductIDs(ctx context.Context, productIDs []string) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Product
	for _, id := range productIDs {
		if p, ok := f.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProductStore) FindAll(ctx context.Context) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Product
	for _, p := range f.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductId < out[j].ProductId })
	return out, nil
}

func (f *fakeProductStore) SetStatus(ctx context.Context, productID, status string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (f *fakeProductStore) Delete(ctx context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.products[productID]; !ok {
		return store.ErrNotFound
	}
	delete(f.products, productID)
	return nil
}

func (f *fakeProductStore) TryConsumeScan(ctx context.Context, productID string) (*models.Product, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[productID]
	if !ok || p.Status != models.StatusActive || p.ScanCount >= p.MaxScan {
		return nil, false, nil
	}

	p.ScanCount++
	if p.ScanCount >= p.MaxScan {
		p.Status = models.StatusInvalid
	}
	p.UpdatedAt = time.Now().UTC()

	cp := *p
	return &cp, true, nil
}

func (f *fakeProductStore) MarkInvalid(ctx context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.products[productID]; ok && p.Status == models.StatusActive {
		p.Status = models.StatusInvalid
		p.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// seed inserts a product bypassing Create defaults, for arranging states.
func (f *fakeProductStore) seed(p *models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.products[p.ProductId] = &cp
}

type fakeScanStore struct {
	mu      sync.Mutex
	entries []*models.ScanLog
}

func (f *fakeScanStore) Append(ctx context.Context, entry *models.ScanLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeScanStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeEvents struct {
	mu     sync.Mutex
	events []comm.ScanEvent
}

func (f *fakeEvents) PublishScan(event comm.ScanEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}
