package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScanLog is one verification attempt against a known product.
// Rows are append-only; the productId is a weak reference, a deleted
// product does not cascade into its scan history.
type ScanLog struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProductId string             `json:"productId" bson:"productId"`
	IpAddress string             `json:"ipAddress" bson:"ipAddress"`
	ScannedAt time.Time          `json:"scannedAt" bson:"scannedAt"`
}
