package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ReplaceSourceStrings makes strings the complete, ordered string set of the
// named document, creating the document if needed.
//
// Within one transaction:
//  1. every current string and field of the document is soft-deleted
//  2. each input is upserted by key, with string_order set to its index and
//     soft_deleted cleared
//  3. a string whose value is new or different gets a fresh
//     value_last_updated_date and one newValue history event
//  4. each input field is upserted by name and undeleted
//
// Keys and fields absent from strings stay soft-deleted. An empty strings
// slice empties the document. A batch with an empty or duplicated key, or a
// duplicated field name within one string, is rejected with KindInvalid
// before anything is written. userID must reference an existing user.
func (s *Store) ReplaceSourceStrings(ctx context.Context, userID int64, documentName string, strings []SourceStringInput) error {
	if err := validateUpload(documentName, strings); err != nil {
		return err
	}

	return s.withTx(ctx, "replace source strings", func(tx *sqlx.Tx) error {
		now := s.now()

		if err := requireUser(ctx, tx, userID); err != nil {
			return err
		}

		documentID, err := upsertDocument(ctx, tx, documentName)
		if err != nil {
			return fmt.Errorf("replace source strings: %w", err)
		}

		if err := softDeleteDocumentStrings(ctx, tx, documentID); err != nil {
			return fmt.Errorf("replace source strings: %w", err)
		}

		r, err := newReconciler(ctx, tx)
		if err != nil {
			return fmt.Errorf("replace source strings: %w", err)
		}
		defer r.close()

		for i, in := range strings {
			if err := r.apply(ctx, documentID, i, in, userID, now); err != nil {
				return fmt.Errorf("replace source strings: key %q: %w", in.Key, err)
			}
		}
		return nil
	})
}

func validateUpload(documentName string, strings []SourceStringInput) error {
	if documentName == "" {
		return invalid("EMPTY_DOCUMENT_NAME", "document name is required")
	}

	seen := make(map[string]int, len(strings))
	for i, in := range strings {
		if in.Key == "" {
			return invalid("EMPTY_KEY", "string at index %d has an empty key", i)
		}
		if first, ok := seen[in.Key]; ok {
			return invalid("DUPLICATE_KEY", "key %q appears at index %d and %d", in.Key, first, i)
		}
		seen[in.Key] = i

		fields := make(map[string]struct{}, len(in.AdditionalFields))
		for _, f := range in.AdditionalFields {
			if f.FieldName == "" {
				return invalid("EMPTY_FIELD_NAME", "key %q has a field with an empty name", in.Key)
			}
			if _, ok := fields[f.FieldName]; ok {
				return invalid("DUPLICATE_FIELD", "key %q repeats field %q", in.Key, f.FieldName)
			}
			fields[f.FieldName] = struct{}{}
		}
	}
	return nil
}

// softDeleteDocumentStrings marks every string of a document, and every field
// of those strings, deleted. Called before an upload re-activates what it keeps.
func softDeleteDocumentStrings(ctx context.Context, tx *sqlx.Tx, documentID int64) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE additional_fields
		SET soft_deleted = 1
		WHERE source_string_id IN (SELECT id FROM source_strings WHERE document_id = ?)
	`, documentID); err != nil {
		return fmt.Errorf("soft delete fields: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE source_strings
		SET soft_deleted = 1
		WHERE document_id = ?
	`, documentID); err != nil {
		return fmt.Errorf("soft delete strings: %w", err)
	}
	return nil
}

// reconciler holds the statements prepared for one upload.
type reconciler struct {
	lookup      *sql.Stmt
	insert      *sql.Stmt
	updateValue *sql.Stmt
	updateOrder *sql.Stmt
	upsertField *sql.Stmt
	history     *sql.Stmt
}

func newReconciler(ctx context.Context, tx *sqlx.Tx) (*reconciler, error) {
	r := &reconciler{}
	stmts := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&r.lookup, `SELECT id, value FROM source_strings WHERE document_id = ? AND key = ?`},
		{&r.insert, `
			INSERT INTO source_strings (document_id, key, value, string_order, value_last_updated_date, soft_deleted)
			VALUES (?, ?, ?, ?, ?, 0)
			RETURNING id`},
		{&r.updateValue, `
			UPDATE source_strings
			SET value = ?, string_order = ?, value_last_updated_date = ?, soft_deleted = 0
			WHERE id = ?`},
		{&r.updateOrder, `
			UPDATE source_strings
			SET string_order = ?, soft_deleted = 0
			WHERE id = ?`},
		{&r.upsertField, `
			INSERT INTO additional_fields (source_string_id, field_name, value, ui_hidden, soft_deleted)
			VALUES (?, ?, ?, ?, 0)
			ON CONFLICT(source_string_id, field_name) DO UPDATE SET
				value = excluded.value,
				ui_hidden = excluded.ui_hidden,
				soft_deleted = 0`},
		{&r.history, insertHistorySQL},
	}

	for _, st := range stmts {
		stmt, err := tx.PrepareContext(ctx, st.query)
		if err != nil {
			r.close()
			return nil, fmt.Errorf("prepare: %w", err)
		}
		*st.dst = stmt
	}
	return r, nil
}

func (r *reconciler) close() {
	for _, stmt := range []*sql.Stmt{r.lookup, r.insert, r.updateValue, r.updateOrder, r.upsertField, r.history} {
		if stmt != nil {
			stmt.Close()
		}
	}
}

// apply upserts one input string at position order.
func (r *reconciler) apply(ctx context.Context, documentID int64, order int, in SourceStringInput, userID int64, now string) error {
	var (
		id       int64
		oldValue string
		changed  bool
	)

	err := r.lookup.QueryRowContext(ctx, documentID, in.Key).Scan(&id, &oldValue)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := r.insert.QueryRowContext(ctx, documentID, in.Key, in.Value, order, now).Scan(&id); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		changed = true
	case err != nil:
		return fmt.Errorf("lookup: %w", err)
	case oldValue != in.Value:
		if _, err := r.updateValue.ExecContext(ctx, in.Value, order, now, id); err != nil {
			return fmt.Errorf("update value: %w", err)
		}
		changed = true
	default:
		if _, err := r.updateOrder.ExecContext(ctx, order, id); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
	}

	for _, f := range in.AdditionalFields {
		if _, err := r.upsertField.ExecContext(ctx, id, f.FieldName, f.Value, f.UIHidden); err != nil {
			return fmt.Errorf("upsert field %q: %w", f.FieldName, err)
		}
	}

	if changed {
		if _, err := r.history.ExecContext(ctx, id, SourceLanguage, string(EventNewValue), in.Value, now, userID); err != nil {
			return fmt.Errorf("append history: %w", classifyConstraint(err, "user does not exist"))
		}
	}
	return nil
}

// GetSourceString returns one source string by id, including soft-deleted
// rows and their active fields. Returns a KindNotFound error if absent.
func (s *Store) GetSourceString(ctx context.Context, id int64) (SourceString, error) {
	var row struct {
		ID                   int64  `db:"id"`
		DocumentID           int64  `db:"document_id"`
		Key                  string `db:"key"`
		Value                string `db:"value"`
		StringOrder          int    `db:"string_order"`
		ValueLastUpdatedDate string `db:"value_last_updated_date"`
		SoftDeleted          bool   `db:"soft_deleted"`
	}
	err := s.dbx.GetContext(ctx, &row, `
		SELECT id, document_id, key, value, string_order, value_last_updated_date, soft_deleted
		FROM source_strings
		WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return SourceString{}, notFound("STRING_NOT_FOUND", "source string %d does not exist", id)
	}
	if err != nil {
		return SourceString{}, fmt.Errorf("get source string: %w", err)
	}

	updated, err := parseTime(row.ValueLastUpdatedDate)
	if err != nil {
		return SourceString{}, fmt.Errorf("get source string: %w", err)
	}

	fields, err := s.loadFields(ctx, []int64{id})
	if err != nil {
		return SourceString{}, fmt.Errorf("get source string: %w", err)
	}

	return SourceString{
		ID:                   row.ID,
		DocumentID:           row.DocumentID,
		Key:                  row.Key,
		Value:                row.Value,
		StringOrder:          row.StringOrder,
		ValueLastUpdatedDate: updated,
		SoftDeleted:          row.SoftDeleted,
		AdditionalFields:     fieldsOrEmpty(fields[id]),
	}, nil
}
