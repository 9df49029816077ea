package db

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/orrn/printbridge/internal/core"
)

// JobStore implements core.JobStore on a SQL engine.
type JobStore struct {
	db *sqlx.DB
}

func NewJobStore(conn *sqlx.DB) *JobStore {
	return &JobStore{db: conn}
}

func (s *JobStore) Insert(ctx context.Context, job *core.PrintJob) error {
	data, err := encodeDirectives(job.Directives)
	if err != nil {
		return fmt.Errorf("failed to encode print job %s: %w", job.ID, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageError("begin transaction", err)
	}

	if _, err := tx.ExecContext(ctx, s.db.Rebind(InsertJob), job.ID, data, job.CreatedAt.UTC()); err != nil {
		_ = tx.Rollback()
		return storageError("insert print job", err)
	}

	if err := tx.Commit(); err != nil {
		return storageError("commit print job", err)
	}
	return nil
}

func (s *JobStore) Get(ctx context.Context, id string) (*core.PrintJob, error) {
	var row PrintJob
	err := s.db.GetContext(ctx, &row, s.db.Rebind(GetJobByID), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, id)
		}
		return nil, storageError("get print job", err)
	}

	directives, err := decodeDirectives(row.DataJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode print job %s: %w: %w", id, core.ErrStorage, err)
	}

	return &core.PrintJob{
		ID:         row.ID,
		Directives: directives,
		CreatedAt:  row.CreatedAt.UTC(),
	}, nil
}

func storageError(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, core.ErrStorage, err)
}

func encodeDirectives(directives []core.Directive) (string, error) {
	if directives == nil {
		directives = []core.Directive{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(jobDocument{Data: directives}); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func decodeDirectives(data string) ([]core.Directive, error) {
	var doc jobDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, err
	}
	if doc.Data == nil {
		doc.Data = []core.Directive{}
	}
	return doc.Data, nil
}
