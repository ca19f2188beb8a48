// ABOUTME: Resource row operations for the learning resource catalog
// ABOUTME: Kind values are validated against the closed enum before any write

package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CreateResource validates and persists a new resource. The row id and
// creation time are filled in on success.
func (s *SQLiteStore) CreateResource(ctx context.Context, r *Resource) error {
	if err := r.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO resources (subject, kind, title, link, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query, r.Subject, string(r.Kind), r.Title, r.Link, now)
	if err != nil {
		return fmt.Errorf("inserting resource %q: %w", r.Title, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading resource id: %w", err)
	}

	r.ID = id
	r.CreatedAt = now

	s.logger.Debug("resource created", "id", id, "subject", r.Subject, "kind", r.Kind)
	return nil
}

// ListResourcesBySubjects returns resources whose subject is in the given set.
// An empty subject set returns no rows.
func (s *SQLiteStore) ListResourcesBySubjects(ctx context.Context, subjects []string) ([]*Resource, error) {
	if len(subjects) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(subjects))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT id, subject, kind, title, link, created_at
		FROM resources
		WHERE subject IN (%s)
		ORDER BY subject, kind, title
	`, placeholders)

	args := make([]any, len(subjects))
	for i, subj := range subjects {
		args[i] = subj
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying resources: %w", err)
	}
	defer rows.Close()

	return scanResources(rows)
}

// ListResources returns every stored resource, ordered by subject, kind, title.
func (s *SQLiteStore) ListResources(ctx context.Context) ([]*Resource, error) {
	query := `
		SELECT id, subject, kind, title, link, created_at
		FROM resources
		ORDER BY subject, kind, title
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying resources: %w", err)
	}
	defer rows.Close()

	return scanResources(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanResources(rows rowScanner) ([]*Resource, error) {
	var out []*Resource
	for rows.Next() {
		var r Resource
		var kind string
		if err := rows.Scan(&r.ID, &r.Subject, &kind, &r.Title, &r.Link, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning resource row: %w", err)
		}
		r.Kind = ResourceKind(kind)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resource rows: %w", err)
	}
	return out, nil
}
