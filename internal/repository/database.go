package repository

import (
	"context"
	"fmt"

	"github.com/go-kivik/kivik/v4"
)

// Open returns a handle on dbName, creating the database when it is missing.
func Open(ctx context.Context, client *kivik.Client, dbName string) (*kivik.DB, error) {
	exists, err := client.DBExists(ctx, dbName)
	if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		if err := client.CreateDB(ctx, dbName); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	db := client.DB(dbName)
	if err := db.Err(); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return db, nil
}

// EnsureIndexes creates the Mango indexes the list and lookup queries use.
// Creating an index that already exists is a no-op in CouchDB.
func EnsureIndexes(ctx context.Context, db *kivik.DB) error {
	indexes := []struct {
		name   string
		fields []string
	}{
		{name: "by-owner", fields: []string{docTypeField, "user_id"}},
		{name: "by-email", fields: []string{docTypeField, "email"}},
	}

	for _, idx := range indexes {
		def := map[string]interface{}{"fields": idx.fields}
		if err := db.CreateIndex(ctx, "indexes", idx.name, def); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
