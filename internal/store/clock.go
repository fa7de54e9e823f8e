package store

import "time"

// timeLayout is fixed width so stored timestamps sort lexically in
// chronological order. Always UTC.
const timeLayout = "2006-01-02 15:04:05.000000000"

// Clock supplies the wall time stamped on value changes and history events.
//
// Staleness compares these stamps, so a Clock used with one database should
// never move backwards.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &Error{Kind: KindInternal, Code: "BAD_TIMESTAMP", Message: "stored timestamp " + s + " is malformed", Err: err}
	}
	return t, nil
}

// now returns the store clock's current time, formatted for storage.
func (s *Store) now() string {
	return formatTime(s.clock.Now())
}
