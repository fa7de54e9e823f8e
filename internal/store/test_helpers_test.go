package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/kantan/internal/testutil"
)

// createTestStore creates a new store in a temp dir with a step clock, so
// every write gets a distinct, increasing timestamp.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(testutil.NewStepClock(time.Time{}, time.Second)))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestUser inserts a translator with a unique api key and returns its id.
func createTestUser(t *testing.T, s *Store, username string, languageCodes ...string) int64 {
	t.Helper()
	u, err := s.CreateUser(context.Background(), NewUser{
		Username:      username,
		PasswordHash:  "hash",
		Role:          RoleTranslator,
		APIKey:        "apikey-" + username,
		LanguageCodes: languageCodes,
	})
	if err != nil {
		t.Fatalf("CreateUser(%q) failed: %v", username, err)
	}
	return u.ID
}

// upload replaces a document's strings, failing the test on error.
func upload(t *testing.T, s *Store, userID int64, document string, strs ...SourceStringInput) {
	t.Helper()
	if err := s.ReplaceSourceStrings(context.Background(), userID, document, strs); err != nil {
		t.Fatalf("ReplaceSourceStrings(%q) failed: %v", document, err)
	}
}

// str builds a field-less upload entry.
func str(key, value string) SourceStringInput {
	return SourceStringInput{Key: key, Value: value}
}

// numbered builds n field-less entries key-0..key-(n-1).
func numbered(n int) []SourceStringInput {
	out := make([]SourceStringInput, n)
	for i := range out {
		out[i] = str(fmt.Sprintf("key-%d", i), fmt.Sprintf("Value %d", i))
	}
	return out
}

// stringID returns the id of the active string with key in document.
func stringID(t *testing.T, s *Store, document, key string) int64 {
	t.Helper()
	var id int64
	err := s.db.QueryRow(`
		SELECT ss.id FROM source_strings ss
		JOIN documents d ON d.id = ss.document_id
		WHERE d.name = ? AND ss.key = ?
	`, document, key).Scan(&id)
	if err != nil {
		t.Fatalf("lookup string %s/%s: %v", document, key, err)
	}
	return id
}

// historyCount returns the number of history rows.
func historyCount(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM string_history`).Scan(&n); err != nil {
		t.Fatalf("count history: %v", err)
	}
	return n
}

func keysOf(strs []String) []string {
	keys := make([]string, len(strs))
	for i, s := range strs {
		keys[i] = s.Key
	}
	return keys
}

func documentKeys(strs []DocumentString) []string {
	keys := make([]string, len(strs))
	for i, s := range strs {
		keys[i] = s.Key
	}
	return keys
}
