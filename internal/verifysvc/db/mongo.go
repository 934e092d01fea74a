package db

import (
	"context"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ProductCollection = "products"
	ScanLogCollection = "scanlogs"
)

func ConnectToDB(mongoURI string) (*mongo.Database, context.CancelFunc, error) {
	uri, err := url.Parse(mongoURI)
	if err != nil {
		log.Errorf("Error parsing MongoDB URI: %v", err)
		return nil, nil, err
	}

	dbName := strings.TrimPrefix(uri.Path, "/")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		cancel()
		log.Errorf("Error connecting to MongoDB: %v", err)
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		cancel()
		log.Errorf("Error pinging MongoDB: %v", err)
		return nil, nil, err
	}

	db := client.Database(dbName)

	return db, cancel, nil
}

// EnsureIndexes creates the unique productId index on products and the
// productId lookup index on scanlogs. Safe to call on every start.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := db.Collection(ProductCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"productId": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// scanlogs productId index serves downstream analytics lookups only
	_, err = db.Collection(ScanLogCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.M{"productId": 1},
	})
	return err
}
