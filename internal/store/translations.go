package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UpsertTranslation sets the languageCode translation of a source string.
//
// A new or different value replaces the stored one, stamps it with the
// current time and appends one newValue history event tagged with
// languageCode. An unchanged value writes nothing.
//
// The string is not checked for soft deletion; callers resolve translatable
// strings first. Unknown string or user ids fail the foreign key and come
// back as KindNotFound.
func (s *Store) UpsertTranslation(ctx context.Context, sourceStringID int64, languageCode, value string, userID int64) error {
	if languageCode == "" || languageCode == SourceLanguage {
		return invalid("BAD_LANGUAGE_CODE", "%q is not a translation language", languageCode)
	}

	return s.withTx(ctx, "upsert translation", func(tx *sqlx.Tx) error {
		now := s.now()

		var current string
		err := tx.GetContext(ctx, &current, `
			SELECT value FROM translations
			WHERE source_string_id = ? AND language_code = ?
		`, sourceStringID, languageCode)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("upsert translation: lookup: %w", err)
		case current == value:
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO translations (source_string_id, language_code, value, value_last_updated_date, created_by)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(source_string_id, language_code) DO UPDATE SET
				value = excluded.value,
				value_last_updated_date = excluded.value_last_updated_date,
				created_by = excluded.created_by
		`, sourceStringID, languageCode, value, now, userID)
		if err != nil {
			return fmt.Errorf("upsert translation: %w",
				classifyConstraint(err, fmt.Sprintf("source string %d or user %d does not exist", sourceStringID, userID)))
		}

		if _, err := tx.ExecContext(ctx, insertHistorySQL, sourceStringID, languageCode, string(EventNewValue), value, now, userID); err != nil {
			return fmt.Errorf("upsert translation: append history: %w", classifyConstraint(err, "user does not exist"))
		}
		return nil
	})
}

// GetTranslation returns the languageCode translation of a source string.
// Returns a KindNotFound error if the string has no such translation.
func (s *Store) GetTranslation(ctx context.Context, sourceStringID int64, languageCode string) (Translation, error) {
	var row struct {
		ID                   int64  `db:"id"`
		SourceStringID       int64  `db:"source_string_id"`
		LanguageCode         string `db:"language_code"`
		Value                string `db:"value"`
		ValueLastUpdatedDate string `db:"value_last_updated_date"`
		CreatedBy            int64  `db:"created_by"`
	}
	err := s.dbx.GetContext(ctx, &row, `
		SELECT id, source_string_id, language_code, value, value_last_updated_date, created_by
		FROM translations
		WHERE source_string_id = ? AND language_code = ?
	`, sourceStringID, languageCode)
	if errors.Is(err, sql.ErrNoRows) {
		return Translation{}, notFound("TRANSLATION_NOT_FOUND", "string %d has no %s translation", sourceStringID, languageCode)
	}
	if err != nil {
		return Translation{}, fmt.Errorf("get translation: %w", err)
	}

	updated, err := parseTime(row.ValueLastUpdatedDate)
	if err != nil {
		return Translation{}, fmt.Errorf("get translation: %w", err)
	}

	return Translation{
		ID:                   row.ID,
		SourceStringID:       row.SourceStringID,
		LanguageCode:         row.LanguageCode,
		Value:                row.Value,
		ValueLastUpdatedDate: updated,
		CreatedBy:            row.CreatedBy,
	}, nil
}
