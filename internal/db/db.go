package db

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultDatabase = "bizcards"

// DatabaseName takes the database from the URI path, e.g.
// mongodb://localhost:27017/bizcards.
func DatabaseName(mongoURI string) (string, error) {
	uri, err := url.Parse(mongoURI)
	if err != nil {
		return "", errors.Wrap(err, "parsing MongoDB URI")
	}

	dbName := strings.TrimPrefix(uri.Path, "/")
	if dbName == "" {
		dbName = DefaultDatabase
	}
	return dbName, nil
}

func Connect(ctx context.Context, mongoURI string) (*mongo.Client, *mongo.Database, error) {
	dbName, err := DatabaseName(mongoURI)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to MongoDB")
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, errors.Wrap(err, "pinging MongoDB")
	}

	return client, client.Database(dbName), nil
}

// EnsureIndexes creates the unique and lookup indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_unique"),
			},
		},
		"cards": {
			{
				Keys:    bson.D{{Key: "bizNumber", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("bizNumber_unique"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetName("user_id"),
			},
			{
				Keys:    bson.D{{Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("createdAt_desc"),
			},
		},
	}

	for collection, models := range indexes {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return errors.Wrapf(err, "creating indexes on %s", collection)
		}
		log.Infof("indexes ready on %s: %v", collection, names)
	}
	return nil
}
