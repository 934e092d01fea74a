package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/veritag/veriqr-services/internal/verifysvc/models"
	"github.com/veritag/veriqr-services/internal/verifysvc/store"
)

// memStore is an in-memory stand-in for the mongo stores, enough to drive
// the HTTP surface end to end.
type memStore struct {
	mu       sync.Mutex
	products map[string]*models.Product
	scans    []*models.ScanLog
}

func newMemStore() *memStore {
	return &memStore{products: map[string]*models.Product{}}
}

func (m *memStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.products[p.ProductId]; exists {
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
	m.products[p.ProductId] = &cp
	return p, nil
}

func (m *memStore) FindByProductID(ctx context.Context, productID string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) List(ctx context.Context, filter store.ListFilter, page, limit int) ([]*models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*models.Product
	for _, p := range m.products {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(p.ProductName), s) && !strings.Contains(p.ProductId, s) {
				continue
			}
		}
		cp := *p
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

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

func (m *memStore) FindByProductIDs(ctx context.Context, productIDs []string) ([]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Product
	for _, id := range productIDs {
		if p, ok := m.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) FindAll(ctx context.Context) ([]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Product
	for _, p := range m.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) SetStatus(ctx context.Context, productID, status string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (m *memStore) Delete(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[productID]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, productID)
	return nil
}

func (m *memStore) TryConsumeScan(ctx context.Context, productID string) (*models.Product, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productID]
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

func (m *memStore) MarkInvalid(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.products[productID]; ok && p.Status == models.StatusActive {
		p.Status = models.StatusInvalid
	}
	return nil
}

func (m *memStore) Append(ctx context.Context, entry *models.ScanLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans = append(m.scans, entry)
	return nil
}
