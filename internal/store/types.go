package store

import "time"

// SourceLanguage is the language code that addresses source-side values in
// queries and history events.
const SourceLanguage = "source"

// EventType labels a history event.
type EventType string

const (
	// EventNewValue records a changed source or translation value.
	EventNewValue EventType = "newValue"

	// EventCommentChanged is written by older single-comment uploads.
	// The multi-field reconciler never emits it; it is only read back.
	EventCommentChanged EventType = "commentChanged"
)

// Role is a user's permission level. Enforcement lives outside the store.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTranslator Role = "translator"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTranslator
}

// Document is a named container of source strings.
type Document struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AdditionalField is per-string metadata such as a translator comment.
type AdditionalField struct {
	FieldName string `json:"fieldName" yaml:"fieldName"`
	Value     string `json:"value" yaml:"value"`
	UIHidden  bool   `json:"uiHidden,omitempty" yaml:"uiHidden,omitempty"`
}

// SourceStringInput is one entry of an upload, in display order.
type SourceStringInput struct {
	Key              string            `json:"key" yaml:"key"`
	Value            string            `json:"value" yaml:"value"`
	AdditionalFields []AdditionalField `json:"additionalFields" yaml:"additionalFields"`
}

// SourceString is a stored source string row.
type SourceString struct {
	ID                   int64
	DocumentID           int64
	Key                  string
	Value                string
	StringOrder          int
	ValueLastUpdatedDate time.Time
	SoftDeleted          bool
	AdditionalFields     []AdditionalField
}

// String is a translatable string as returned by the paginated queries.
// Value is the source value or the translated value depending on the query.
type String struct {
	ID               int64             `json:"id"`
	Key              string            `json:"key"`
	Value            string            `json:"value"`
	AdditionalFields []AdditionalField `json:"additionalFields"`
}

// DocumentString is one exported string of a document. AdditionalFields is
// only populated for source exports.
type DocumentString struct {
	Key              string            `json:"key"`
	Value            string            `json:"value"`
	AdditionalFields []AdditionalField `json:"additionalFields,omitempty"`
}

// Translation is a stored translation row.
type Translation struct {
	ID                   int64
	SourceStringID       int64
	LanguageCode         string
	Value                string
	ValueLastUpdatedDate time.Time
	CreatedBy            int64
}

// HistoryEvent is one history row joined with its context.
type HistoryEvent struct {
	ID             int64     `json:"id"`
	SourceStringID int64     `json:"sourceStringId"`
	DocumentName   string    `json:"documentName"`
	SourceValue    string    `json:"sourceValue"`
	LanguageCode   string    `json:"languageCode"`
	EventType      EventType `json:"eventType"`
	Value          string    `json:"value"`
	EventDate      time.Time `json:"eventDate"`
	UserID         int64     `json:"userId"`
	Username       string    `json:"username"`
}

// PageOptions bounds a keyset-paginated query.
// IDOffset, when non-zero, returns only rows with id < IDOffset.
type PageOptions struct {
	Limit    int
	IDOffset int64
}

// HistoryQuery filters GetHistory. Zero values mean "no filter".
type HistoryQuery struct {
	SourceStringID  int64
	LanguageCode    string
	HistoryIDOffset int64
	Limit           int
}

// User is a stored account. PasswordHash is opaque to the store.
type User struct {
	ID            int64    `json:"id"`
	Username      string   `json:"username"`
	PasswordHash  string   `json:"-"`
	Role          Role     `json:"role"`
	APIKey        string   `json:"apiKey"`
	LanguageCodes []string `json:"languageCodes"`
}

// NewUser holds the fields required to create a user.
type NewUser struct {
	Username      string
	PasswordHash  string
	Role          Role
	APIKey        string
	LanguageCodes []string
}
