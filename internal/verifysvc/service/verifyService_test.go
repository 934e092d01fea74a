package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritag/veriqr-services/internal/verifysvc/models"
)

const testPID = "1234567812345678"

func newVerifyFixture() (*VerifyService, *fakeProductStore, *fakeScanStore, *fakeEvents) {
	products := newFakeProductStore()
	scans := &fakeScanStore{}
	events := &fakeEvents{}
	return NewVerifyService(products, scans, events), products, scans, events
}

func TestVerifyMalformedIdentifier(t *testing.T) {
	svc, _, scans, _ := newVerifyFixture()

	for _, pid := range []string{"", "abc", "123", "12345678901234567"} {
		result, err := svc.Verify(context.Background(), pid, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, ScanInvalid, result.Status)
		assert.Equal(t, KindMalformed, result.Kind)
	}

	assert.Equal(t, 0, scans.count(), "malformed scans must not reach the ledger")
}

func TestVerifyUnknownIdentifier(t *testing.T) {
	svc, _, scans, _ := newVerifyFixture()

	result, err := svc.Verify(context.Background(), testPID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, ScanInvalid, result.Status)
	assert.Equal(t, KindNotFound, result.Kind)
	assert.Equal(t, 0, scans.count(), "unknown identifiers must not reach the ledger")
}

func TestVerifyFullLifecycle(t *testing.T) {
	svc, products, scans, events := newVerifyFixture()

	_, err := products.Create(context.Background(), &models.Product{ProductId: testPID, ProductName: "Widget"})
	require.NoError(t, err)

	// first scan
	result, err := svc.Verify(context.Background(), testPID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, ScanVerified, result.Status)
	assert.Equal(t, 1, result.ScanCount)
	assert.Equal(t, 2, result.MaxScan)

	// second scan is the last permitted one
	result, err = svc.Verify(context.Background(), testPID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, ScanLastValid, result.Status)
	assert.Equal(t, 2, result.ScanCount)

	p, err := products.FindByProductID(context.Background(), testPID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvalid, p.Status)

	// third scan is rejected and does not move the counter
	result, err = svc.Verify(context.Background(), testPID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, ScanInvalid, result.Status)
	assert.Equal(t, KindExhausted, result.Kind)
	assert.Equal(t, 2, result.ScanCount)

	p, err = products.FindByProductID(context.Background(), testPID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.ScanCount)

	assert.Equal(t, 3, scans.count(), "all three known-product attempts are ledgered")
	assert.Len(t, events.events, 3)
}

func TestVerifyRejectionIsIdempotent(t *testing.T) {
	svc, products, _, _ := newVerifyFixture()

	products.seed(&models.Product{
		ProductId: testPID, ProductName: "Widget",
		ScanCount: 2, MaxScan: 2, Status: models.StatusInvalid,
	})

	for i := 0; i < 5; i++ {
		result, err := svc.Verify(context.Background(), testPID, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, ScanInvalid, result.Status)
	}

	p, err := products.FindByProductID(context.Background(), testPID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.ScanCount)
}

func TestVerifySelfHealsStatus(t *testing.T) {
	svc, products, scans, _ := newVerifyFixture()

	// counter at budget but status never flipped
	products.seed(&models.Product{
		ProductId: testPID, ProductName: "Widget",
		ScanCount: 2, MaxScan: 2, Status: models.StatusActive,
	})

	result, err := svc.Verify(context.Background(), testPID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, ScanInvalid, result.Status)
	assert.Equal(t, KindExhausted, result.Kind)

	p, err := products.FindByProductID(context.Background(), testPID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvalid, p.Status)
	assert.Equal(t, 2, p.ScanCount)
	assert.Equal(t, 1, scans.count())
}

func TestVerifyAdminOverrideBlocksScan(t *testing.T) {
	svc, products, _, _ := newVerifyFixture()

	products.seed(&models.Product{
		ProductId: testPID, ProductName: "Widget",
		ScanCount: 0, MaxScan: 2, Status: models.StatusInvalid,
	})

	result, err := svc.Verify(context.Background(), testPID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, ScanInvalid, result.Status)

	p, err := products.FindByProductID(context.Background(), testPID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.ScanCount, "admin-invalidated products never consume budget")
}

func TestVerifyConcurrentScansRespectBudget(t *testing.T) {
	svc, products, scans, _ := newVerifyFixture()

	_, err := products.Create(context.Background(), &models.Product{ProductId: testPID, ProductName: "Widget"})
	require.NoError(t, err)

	const n = 32

	var wg sync.WaitGroup
	results := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Verify(context.Background(), testPID, "10.0.0.1")
			if err != nil {
				t.Error(err)
				return
			}
			results <- result.Status
		}()
	}
	wg.Wait()
	close(results)

	counts := map[string]int{}
	for status := range results {
		counts[status]++
	}

	assert.Equal(t, 1, counts[ScanVerified])
	assert.Equal(t, 1, counts[ScanLastValid])
	assert.Equal(t, n-2, counts[ScanInvalid])

	p, err := products.FindByProductID(context.Background(), testPID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.ScanCount, "counter never exceeds the budget")
	assert.Equal(t, models.StatusInvalid, p.Status)
	assert.Equal(t, n, scans.count(), "every known-product attempt is ledgered")
}
