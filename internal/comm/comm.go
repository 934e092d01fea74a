package comm

import (
	"time"
)

// ScanEvent is published to downstream analytics consumers for every
// verification attempt that reached a known product. It mirrors the ledger
// row plus the outcome the caller was given.
type ScanEvent struct {
	ProductId string    `json:"product_id"`
	Status    string    `json:"status"` // verified, last_valid, invalid
	IpAddress string    `json:"ip_address"`
	ScannedAt time.Time `json:"scanned_at"`
}

// ServiceHeartbeat lets operators watch running instances on the broker.
type ServiceHeartbeat struct {
	ID        string    `json:"id"` // service instance id
	Timestamp time.Time `json:"timestamp"`
}
