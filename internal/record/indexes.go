package record

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the source relies on: a unique name
// index on the schema registry and a pid index on every registered schema's
// row collection. Safe to call on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database, registry string) error {
	registryIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_schemas_name").SetUnique(true),
		},
	}

	if _, err := db.Collection(registry).Indexes().CreateMany(ctx, registryIndexes); err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create registry indexes: %w", err)
		}
	}

	cursor, err := db.Collection(registry).Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list schemas: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var def schemaDef
		if err := cursor.Decode(&def); err != nil {
			return fmt.Errorf("failed to decode schema definition: %w", err)
		}

		rowIndexes := []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "pid", Value: 1}},
				Options: options.Index().SetName("idx_" + def.Name + "_pid"),
			},
		}
		if _, err := db.Collection(def.Name).Indexes().CreateMany(ctx, rowIndexes); err != nil {
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("failed to create indexes for schema %q: %w", def.Name, err)
			}
		}
	}

	return cursor.Err()
}
