package database

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"classBook/config"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	parent_id  TEXT NOT NULL DEFAULT '',
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection, parent_id, created_at);`

// PostgresStore emulates the document store with one JSONB table.
type PostgresStore struct {
	db *sqlx.DB
}

type documentRow struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

func OpenDB(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.URI)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// OpenPostgres connects and makes sure the documents table exists.
func OpenPostgres(ctx context.Context, cfg *config.DatabaseConfig) (*PostgresStore, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	store, err := NewPostgresStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func NewPostgresStore(ctx context.Context, db *sqlx.DB) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, documentsSchema); err != nil {
		return nil, errors.Wrap(err, "create documents table")
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Add(ctx context.Context, path Path, fields Fields) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", Rejected("add", path.String(), err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, collection, parent_id, data)
		VALUES ($1, $2, $3, $4)`,
		id, path.Collection, path.Parent, string(data))
	if err != nil {
		return "", classifyPostgres("add", path.String(), err, true)
	}
	return id, nil
}

func (s *PostgresStore) List(ctx context.Context, path Path) ([]Document, error) {
	var rows []documentRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, data
		FROM documents
		WHERE collection = $1 AND parent_id = $2
		ORDER BY created_at, id`,
		path.Collection, path.Parent)
	if err != nil {
		return nil, classifyPostgres("list", path.String(), err, false)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		fields, err := decodeFields(row.Data)
		if err != nil {
			return nil, Unavailable("list", path.String(), errors.Wrapf(err, "decode document %s", row.ID))
		}
		docs = append(docs, Document{ID: row.ID, Fields: fields})
	}
	return docs, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func decodeFields(data []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields Fields
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = Fields{}
	}
	return fields, nil
}

func classifyPostgres(op, target string, err error, write bool) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return Unavailable(op, target, err)
	}

	switch pqErr.Code.Class() {
	// connection exception, operator intervention, insufficient resources
	case "08", "57", "53":
		return Unavailable(op, target, err)
	}
	if write {
		return Rejected(op, target, err)
	}
	return Unavailable(op, target, err)
}
