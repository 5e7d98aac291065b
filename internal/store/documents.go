package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Document is one stored JSON body.
type Document struct {
	Key  string
	Body json.RawMessage
}

// ListDocuments returns every document in a collection in insertion order.
// A replaced document keeps its original position.
func ListDocuments(ctx context.Context, db *sql.DB, collection string) ([]Document, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT key, body FROM documents WHERE collection = ? ORDER BY seq`, collection,
	)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var body string
		if err := rows.Scan(&d.Key, &body); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.Body = json.RawMessage(body)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetDocument returns one document, or nil if it does not exist.
func GetDocument(ctx context.Context, db *sql.DB, collection, key string) (*Document, error) {
	var body string
	err := db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND key = ?`, collection, key,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return &Document{Key: key, Body: json.RawMessage(body)}, nil
}

// PutDocument stores body under key, replacing any existing document.
func PutDocument(ctx context.Context, db *sql.DB, collection, key string, body json.RawMessage) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO documents (collection, key, body) VALUES (?, ?, ?)
		 ON CONFLICT (collection, key) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`,
		collection, key, string(body),
	)
	if err != nil {
		return fmt.Errorf("putting document: %w", err)
	}
	return nil
}

// PushDocument appends body under a new time-ordered key and returns the key.
func PushDocument(ctx context.Context, db *sql.DB, collection string, body json.RawMessage) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating key: %w", err)
	}
	key := id.String()

	_, err = db.ExecContext(ctx,
		`INSERT INTO documents (collection, key, body) VALUES (?, ?, ?)`,
		collection, key, string(body),
	)
	if err != nil {
		return "", fmt.Errorf("pushing document: %w", err)
	}
	return key, nil
}

// DeleteDocument removes one document. Deleting a missing key is not an error.
func DeleteDocument(ctx context.Context, db *sql.DB, collection, key string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND key = ?`, collection, key,
	)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// DeleteCollection removes every document in a collection and returns how
// many were removed.
func DeleteCollection(ctx context.Context, db *sql.DB, collection string) (int64, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ?`, collection,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting collection: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted documents: %w", err)
	}
	return n, nil
}
