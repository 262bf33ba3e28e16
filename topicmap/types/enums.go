package types

import (
	"strings"

	"github.com/teranos/topicdb/errors"
)

// Language is the closed set of languages a name, occurrence or attribute can carry.
// Persisted as the lower-cased ISO 639-2 code.
type Language string

const (
	English Language = "eng"
	Spanish Language = "spa"
	German  Language = "deu"
	Italian Language = "ita"
	French  Language = "fra"
	Dutch   Language = "nld"
)

// DefaultLanguage is used whenever a language is left unset
const DefaultLanguage = English

var languageNames = map[string]Language{
	"eng": English, "english": English,
	"spa": Spanish, "spanish": Spanish,
	"deu": German, "german": German,
	"ita": Italian, "italian": Italian,
	"fra": French, "french": French,
	"nld": Dutch, "dutch": Dutch,
}

// Languages lists every supported language in declaration order
func Languages() []Language {
	return []Language{English, Spanish, German, Italian, French, Dutch}
}

// ParseLanguage accepts a code or an English language name, case-insensitively
func ParseLanguage(s string) (Language, error) {
	if l, ok := languageNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l, nil
	}
	return "", errors.NewInvalidRequestError("unknown language %q", s)
}

// Valid reports whether l is one of the supported languages
func (l Language) Valid() bool {
	switch l {
	case English, Spanish, German, Italian, French, Dutch:
		return true
	}
	return false
}

func (l Language) String() string { return string(l) }

// check rejects a language outside the supported set
func (l Language) check() error {
	if !l.Valid() {
		return errors.NewInvalidRequestError("unknown language %q", string(l))
	}
	return nil
}

// orDefault returns l, or DefaultLanguage when l is empty
func (l Language) orDefault() Language {
	if l == "" {
		return DefaultLanguage
	}
	return l
}

// DataType governs how an attribute value (always stored as text) is interpreted
type DataType string

const (
	StringType    DataType = "string"
	NumberType    DataType = "number"
	TimestampType DataType = "timestamp"
	BooleanType   DataType = "boolean"
)

// ParseDataType accepts a data type name case-insensitively
func ParseDataType(s string) (DataType, error) {
	switch d := DataType(strings.ToLower(strings.TrimSpace(s))); d {
	case StringType, NumberType, TimestampType, BooleanType:
		return d, nil
	}
	return "", errors.NewInvalidRequestError("unknown data type %q", s)
}

func (d DataType) String() string { return string(d) }

// Valid reports whether d is one of the known data types
func (d DataType) Valid() bool {
	switch d {
	case StringType, NumberType, TimestampType, BooleanType:
		return true
	}
	return false
}

// CollaborationMode is the access level a user holds on a map
type CollaborationMode string

const (
	ViewMode    CollaborationMode = "view"
	CommentMode CollaborationMode = "comment"
	EditMode    CollaborationMode = "edit"
)

// ParseCollaborationMode accepts a mode name case-insensitively
func ParseCollaborationMode(s string) (CollaborationMode, error) {
	switch m := CollaborationMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ViewMode, CommentMode, EditMode:
		return m, nil
	}
	return "", errors.NewInvalidRequestError("unknown collaboration mode %q", s)
}

func (m CollaborationMode) String() string { return string(m) }

// Valid reports whether m is one of the known modes
func (m CollaborationMode) Valid() bool {
	switch m {
	case ViewMode, CommentMode, EditMode:
		return true
	}
	return false
}
