package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive  = "active"
	StatusInvalid = "invalid"
)

// DefaultMaxScan is the scan budget assigned at creation; once consumed
// the product is permanently invalid.
const DefaultMaxScan = 2

// Product represents one protected physical item in the products collection.
// ProductId is a 16-digit numeric string, unique across the collection.
type Product struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProductId   string             `json:"productId" bson:"productId"`
	ProductName string             `json:"productName" bson:"productName"`
	ScanCount   int                `json:"scanCount" bson:"scanCount"`
	MaxScan     int                `json:"maxScan" bson:"maxScan"`
	Status      string             `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}
