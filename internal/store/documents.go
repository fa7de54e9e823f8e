package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UpsertDocument returns the id of the named document, creating it if needed.
// A name that was deleted earlier gets a fresh id.
func (s *Store) UpsertDocument(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, invalid("EMPTY_DOCUMENT_NAME", "document name is required")
	}

	var id int64
	err := s.withTx(ctx, "upsert document", func(tx *sqlx.Tx) error {
		var err error
		id, err = upsertDocument(ctx, tx, name)
		return err
	})
	return id, err
}

func upsertDocument(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	var id int64
	// DO UPDATE (not DO NOTHING) so RETURNING yields the existing row's id.
	err := tx.QueryRowContext(ctx, `
		INSERT INTO documents (name)
		VALUES (?)
		ON CONFLICT(name) DO UPDATE SET name = excluded.name
		RETURNING id
	`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert document: %w", err)
	}
	return id, nil
}

// MoveDocument renames a document.
//
// Returns a KindNotFound error if from does not exist and a KindConflict
// error if to already exists. Strings, translations and history follow the
// document since they reference its id.
func (s *Store) MoveDocument(ctx context.Context, from, to string) error {
	if to == "" {
		return invalid("EMPTY_DOCUMENT_NAME", "new document name is required")
	}

	return s.withTx(ctx, "move document", func(tx *sqlx.Tx) error {
		fromID, err := documentID(ctx, tx, from)
		if err != nil {
			return fmt.Errorf("move document: %w", err)
		}
		if fromID == 0 {
			return notFound("DOCUMENT_NOT_FOUND", "document %q does not exist", from)
		}

		toID, err := documentID(ctx, tx, to)
		if err != nil {
			return fmt.Errorf("move document: %w", err)
		}
		if toID != 0 {
			return conflict("DOCUMENT_EXISTS", "document %q already exists", to)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE documents SET name = ? WHERE id = ?`, to, fromID); err != nil {
			return fmt.Errorf("move document: rename: %w", classifyConstraint(err, "document "+to+" already exists"))
		}
		return nil
	})
}

// DeleteDocument removes a document together with its strings, fields,
// translations and history. Returns a KindNotFound error if absent.
func (s *Store) DeleteDocument(ctx context.Context, name string) error {
	return s.withTx(ctx, "delete document", func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
		if err != nil {
			return fmt.Errorf("delete document: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete document: rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return notFound("DOCUMENT_NOT_FOUND", "document %q does not exist", name)
		}
		return nil
	})
}

// ListDocuments returns every document ordered by id.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	documents := []Document{}
	if err := s.dbx.SelectContext(ctx, &documents, `SELECT id, name FROM documents ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documents, nil
}

// documentID returns the id of the named document, or 0 if it does not exist.
func documentID(ctx context.Context, q sqlx.QueryerContext, name string) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, q, &id, `SELECT id FROM documents WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lookup document %q: %w", name, err)
	}
	return id, nil
}
