package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// insertHistorySQL appends one event. History rows are never updated.
const insertHistorySQL = `
	INSERT INTO string_history (source_string_id, language_code, event_type, value, event_date, user_id)
	VALUES (?, ?, ?, ?, ?, ?)`

// historyRow is the scan target for GetHistory.
type historyRow struct {
	ID             int64  `db:"id"`
	SourceStringID int64  `db:"source_string_id"`
	DocumentName   string `db:"document_name"`
	SourceValue    string `db:"source_value"`
	LanguageCode   string `db:"language_code"`
	EventType      string `db:"event_type"`
	Value          string `db:"value"`
	EventDate      string `db:"event_date"`
	UserID         int64  `db:"user_id"`
	Username       string `db:"username"`
}

// GetHistory returns history events newest first, joined with the acting
// username, the document name and the string's current source value.
//
// Filters combine with AND. A LanguageCode filter also matches source events
// so a translated string's history shows its full provenance. Events of
// soft-deleted strings are included.
func (s *Store) GetHistory(ctx context.Context, q HistoryQuery) ([]HistoryEvent, error) {
	query := sq.Select(
		"h.id",
		"h.source_string_id",
		"d.name AS document_name",
		"ss.value AS source_value",
		"h.language_code",
		"h.event_type",
		"h.value",
		"h.event_date",
		"h.user_id",
		"u.username",
	).
		From("string_history h").
		Join("source_strings ss ON ss.id = h.source_string_id").
		Join("documents d ON d.id = ss.document_id").
		Join("users u ON u.id = h.user_id").
		OrderBy("h.id DESC").
		Limit(uint64(s.PageLimit(q.Limit)))

	if q.SourceStringID != 0 {
		query = query.Where(sq.Eq{"h.source_string_id": q.SourceStringID})
	}
	if q.LanguageCode != "" {
		codes := []string{SourceLanguage}
		if q.LanguageCode != SourceLanguage {
			codes = append(codes, q.LanguageCode)
		}
		query = query.Where(sq.Eq{"h.language_code": codes})
	}
	if q.HistoryIDOffset != 0 {
		query = query.Where(sq.Lt{"h.id": q.HistoryIDOffset})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("get history: build query: %w", err)
	}

	var rows []historyRow
	if err := s.dbx.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	events := make([]HistoryEvent, 0, len(rows))
	for _, r := range rows {
		eventDate, err := parseTime(r.EventDate)
		if err != nil {
			return nil, fmt.Errorf("get history: event %d: %w", r.ID, err)
		}
		events = append(events, HistoryEvent{
			ID:             r.ID,
			SourceStringID: r.SourceStringID,
			DocumentName:   r.DocumentName,
			SourceValue:    r.SourceValue,
			LanguageCode:   r.LanguageCode,
			EventType:      EventType(r.EventType),
			Value:          r.Value,
			EventDate:      eventDate,
			UserID:         r.UserID,
			Username:       r.Username,
		})
	}
	return events, nil
}
