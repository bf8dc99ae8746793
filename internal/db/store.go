package db

import (
	"context"
	"database/sql"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"

	"github.com/wanyview/capsuled/internal/capsule"
	"github.com/wanyview/capsuled/internal/errors"
)

// columns is the persisted record layout, in scan order.
var columns = []string{
	"id", "title", "content", "source", "domain", "tags_json",
	"quality_score", "author", "created_at", "updated_at", "metadata_json",
}

// Store implements capsule.Store on SQLite. It holds an explicitly
// constructed *sql.DB; the pool is safe for concurrent callers, and each
// single-statement read sees a committed row or none at all.
type Store struct {
	db *sql.DB
}

// New wraps an initialized database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert stores a new capsule. A single INSERT either fully persists the
// record or persists nothing.
func (s *Store) Insert(ctx context.Context, c *capsule.Capsule) error {
	tagsJSON, err := marshalTags(c.Tags)
	if err != nil {
		return errors.NewInternal(err)
	}
	metadataJSON, err := marshalMetadata(c.Metadata)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO capsules (
			id, title, content, source, domain, tags_json,
			quality_score, author, created_at, updated_at, metadata_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		c.ID, c.Title, c.Content, toNullString(c.Source), c.Domain, tagsJSON,
		c.QualityScore, c.Author, c.CreatedAt, c.UpdatedAt, metadataJSON,
	)
	if err != nil {
		return errors.NewStorageUnavailable(err)
	}

	return nil
}

// GetByID retrieves a capsule by ID.
func (s *Store) GetByID(ctx context.Context, id string) (*capsule.Capsule, error) {
	query, args, err := sq.Select(columns...).
		From("capsules").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	row := s.db.QueryRowContext(ctx, query, args...)
	c, err := scanCapsule(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewStorageUnavailable(err)
	}

	return c, nil
}

// Update persists the mutable fields of an existing capsule.
// Does NOT change: id, quality_score, created_at.
func (s *Store) Update(ctx context.Context, c *capsule.Capsule) error {
	tagsJSON, err := marshalTags(c.Tags)
	if err != nil {
		return errors.NewInternal(err)
	}
	metadataJSON, err := marshalMetadata(c.Metadata)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		UPDATE capsules
		SET title = ?, content = ?, source = ?, domain = ?, tags_json = ?,
			author = ?, updated_at = ?, metadata_json = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		c.Title, c.Content, toNullString(c.Source), c.Domain, tagsJSON,
		c.Author, c.UpdatedAt, metadataJSON, c.ID,
	)
	if err != nil {
		return errors.NewStorageUnavailable(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewStorageUnavailable(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(c.ID)
	}

	return nil
}

// DeleteByID removes a capsule and reports whether it existed. The DELETE
// is immediately visible to subsequent reads and scans.
func (s *Store) DeleteByID(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM capsules WHERE id = ?", id)
	if err != nil {
		return false, errors.NewStorageUnavailable(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewStorageUnavailable(err)
	}

	return rowsAffected > 0, nil
}

// List enumerates capsules matching the filter, newest first. Ties on
// created_at fall back to id descending, which preserves creation order
// for ULID-derived IDs.
func (s *Store) List(ctx context.Context, f capsule.Filter) ([]*capsule.Capsule, error) {
	builder := sq.Select(columns...).
		From("capsules").
		OrderBy("created_at DESC", "id DESC")

	if f.Domain != nil {
		builder = builder.Where(sq.Eq{"domain": *f.Domain})
	}
	if f.MinScore != nil {
		builder = builder.Where(sq.GtOrEq{"quality_score": *f.MinScore})
	}
	if f.Limit > 0 {
		builder = builder.Limit(uint64(f.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStorageUnavailable(err)
	}
	defer rows.Close()

	capsules := make([]*capsule.Capsule, 0)
	for rows.Next() {
		c, err := scanCapsule(rows)
		if err != nil {
			return nil, errors.NewStorageUnavailable(err)
		}
		capsules = append(capsules, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageUnavailable(err)
	}

	return capsules, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanCapsule.
type scanner interface {
	Scan(dest ...any) error
}

// scanCapsule scans a single row into a Capsule struct, deserializing the
// tag set and metadata bag at the storage boundary.
func scanCapsule(row scanner) (*capsule.Capsule, error) {
	var (
		c            capsule.Capsule
		source       sql.NullString
		tagsJSON     sql.NullString
		metadataJSON sql.NullString
	)

	err := row.Scan(
		&c.ID, &c.Title, &c.Content, &source, &c.Domain, &tagsJSON,
		&c.QualityScore, &c.Author, &c.CreatedAt, &c.UpdatedAt, &metadataJSON,
	)
	if err != nil {
		return nil, err
	}

	c.Source = fromNullString(source)

	// Tags are never nil internally; absence is an empty set.
	c.Tags = []string{}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &c.Tags); err != nil {
			return nil, err
		}
	}

	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &c.Metadata); err != nil {
			return nil, err
		}
	}

	return &c, nil
}

// marshalTags serializes the tag set; an empty set is stored as NULL.
func marshalTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// marshalMetadata serializes the metadata bag; nil is stored as NULL.
func marshalMetadata(metadata map[string]any) (sql.NullString, error) {
	if metadata == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
