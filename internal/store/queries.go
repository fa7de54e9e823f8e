package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// stringRow is the scan target for the string list queries.
type stringRow struct {
	ID    int64  `db:"id"`
	Key   string `db:"key"`
	Value string `db:"value"`
}

// GetStringsNeedingTranslation returns active source strings that have no
// languageCode translation, or whose translation is strictly older than the
// source value. Newest id first; see PageOptions for paging.
func (s *Store) GetStringsNeedingTranslation(ctx context.Context, languageCode string, page PageOptions) ([]String, error) {
	var rows []stringRow
	err := s.dbx.SelectContext(ctx, &rows, `
		SELECT ss.id, ss.key, ss.value
		FROM source_strings ss
		LEFT JOIN translations t
			ON t.source_string_id = ss.id AND t.language_code = ?
		WHERE ss.soft_deleted = 0
			AND (t.id IS NULL OR t.value_last_updated_date < ss.value_last_updated_date)
			AND (? = 0 OR ss.id < ?)
		ORDER BY ss.id DESC
		LIMIT ?
	`, languageCode, page.IDOffset, page.IDOffset, s.PageLimit(page.Limit))
	if err != nil {
		return nil, fmt.Errorf("get strings needing translation: %w", err)
	}

	strs, err := s.withFields(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("get strings needing translation: %w", err)
	}
	return strs, nil
}

// GetTranslatedStrings returns active source strings whose languageCode
// translation is at least as fresh as the source value. Value holds the
// translated text. Newest id first; see PageOptions for paging.
func (s *Store) GetTranslatedStrings(ctx context.Context, languageCode string, page PageOptions) ([]String, error) {
	var rows []stringRow
	err := s.dbx.SelectContext(ctx, &rows, `
		SELECT ss.id, ss.key, t.value
		FROM source_strings ss
		JOIN translations t
			ON t.source_string_id = ss.id AND t.language_code = ?
		WHERE ss.soft_deleted = 0
			AND t.value_last_updated_date >= ss.value_last_updated_date
			AND (? = 0 OR ss.id < ?)
		ORDER BY ss.id DESC
		LIMIT ?
	`, languageCode, page.IDOffset, page.IDOffset, s.PageLimit(page.Limit))
	if err != nil {
		return nil, fmt.Errorf("get translated strings: %w", err)
	}

	strs, err := s.withFields(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("get translated strings: %w", err)
	}
	return strs, nil
}

// GetDocumentStrings exports the active strings of a document in upload
// order. With SourceLanguage it returns source values and fields; with any
// other code it returns only strings translated into that code, whatever
// their staleness. An unknown document yields an empty slice.
func (s *Store) GetDocumentStrings(ctx context.Context, documentName, languageCode string) ([]DocumentString, error) {
	if languageCode == SourceLanguage {
		return s.getSourceDocument(ctx, documentName)
	}

	var rows []stringRow
	err := s.dbx.SelectContext(ctx, &rows, `
		SELECT ss.id, ss.key, t.value
		FROM source_strings ss
		JOIN documents d ON d.id = ss.document_id
		JOIN translations t
			ON t.source_string_id = ss.id AND t.language_code = ?
		WHERE d.name = ? AND ss.soft_deleted = 0
		ORDER BY ss.string_order ASC
	`, languageCode, documentName)
	if err != nil {
		return nil, fmt.Errorf("get document strings: %w", err)
	}

	out := make([]DocumentString, 0, len(rows))
	for _, r := range rows {
		out = append(out, DocumentString{Key: r.Key, Value: r.Value})
	}
	return out, nil
}

func (s *Store) getSourceDocument(ctx context.Context, documentName string) ([]DocumentString, error) {
	var rows []stringRow
	err := s.dbx.SelectContext(ctx, &rows, `
		SELECT ss.id, ss.key, ss.value
		FROM source_strings ss
		JOIN documents d ON d.id = ss.document_id
		WHERE d.name = ? AND ss.soft_deleted = 0
		ORDER BY ss.string_order ASC
	`, documentName)
	if err != nil {
		return nil, fmt.Errorf("get document strings: %w", err)
	}

	fields, err := s.loadDocumentFields(ctx, documentName)
	if err != nil {
		return nil, fmt.Errorf("get document strings: %w", err)
	}

	out := make([]DocumentString, 0, len(rows))
	for _, r := range rows {
		out = append(out, DocumentString{
			Key:              r.Key,
			Value:            r.Value,
			AdditionalFields: fieldsOrEmpty(fields[r.ID]),
		})
	}
	return out, nil
}

// withFields attaches active additional fields to scanned string rows.
func (s *Store) withFields(ctx context.Context, rows []stringRow) ([]String, error) {
	fields, err := s.loadFields(ctx, rowIDs(rows))
	if err != nil {
		return nil, err
	}

	out := make([]String, 0, len(rows))
	for _, r := range rows {
		out = append(out, String{
			ID:               r.ID,
			Key:              r.Key,
			Value:            r.Value,
			AdditionalFields: fieldsOrEmpty(fields[r.ID]),
		})
	}
	return out, nil
}

// fieldChunk bounds the ids bound into one IN list, well under SQLite's
// host parameter limit.
const fieldChunk = 500

type fieldRow struct {
	SourceStringID int64  `db:"source_string_id"`
	FieldName      string `db:"field_name"`
	Value          string `db:"value"`
	UIHidden       bool   `db:"ui_hidden"`
}

// loadFields returns the active fields of the given strings keyed by string
// id, each list in first-upload order.
func (s *Store) loadFields(ctx context.Context, ids []int64) (map[int64][]AdditionalField, error) {
	byString := make(map[int64][]AdditionalField, len(ids))
	for start := 0; start < len(ids); start += fieldChunk {
		end := min(start+fieldChunk, len(ids))

		query, args, err := sqlx.In(`
			SELECT source_string_id, field_name, value, ui_hidden
			FROM additional_fields
			WHERE soft_deleted = 0 AND source_string_id IN (?)
			ORDER BY source_string_id ASC, id ASC
		`, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("load fields: build query: %w", err)
		}
		if err := s.selectFields(ctx, byString, s.dbx.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("load fields: %w", err)
		}
	}
	return byString, nil
}

// loadDocumentFields returns the active fields of a document's active
// strings keyed by string id, each list in first-upload order.
func (s *Store) loadDocumentFields(ctx context.Context, documentName string) (map[int64][]AdditionalField, error) {
	byString := make(map[int64][]AdditionalField)
	err := s.selectFields(ctx, byString, `
		SELECT af.source_string_id, af.field_name, af.value, af.ui_hidden
		FROM additional_fields af
		JOIN source_strings ss ON ss.id = af.source_string_id
		JOIN documents d ON d.id = ss.document_id
		WHERE d.name = ? AND ss.soft_deleted = 0 AND af.soft_deleted = 0
		ORDER BY af.source_string_id ASC, af.id ASC
	`, documentName)
	if err != nil {
		return nil, fmt.Errorf("load fields: %w", err)
	}
	return byString, nil
}

func (s *Store) selectFields(ctx context.Context, into map[int64][]AdditionalField, query string, args ...any) error {
	var rows []fieldRow
	if err := s.dbx.SelectContext(ctx, &rows, query, args...); err != nil {
		return err
	}
	for _, r := range rows {
		into[r.SourceStringID] = append(into[r.SourceStringID], AdditionalField{
			FieldName: r.FieldName,
			Value:     r.Value,
			UIHidden:  r.UIHidden,
		})
	}
	return nil
}

func rowIDs(rows []stringRow) []int64 {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func fieldsOrEmpty(fields []AdditionalField) []AdditionalField {
	if fields == nil {
		return []AdditionalField{}
	}
	return fields
}
