package model

import "time"

// Role identifies who produced a turn.
type Role string

// Role constants.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Language is a reply language preference.
type Language string

// Supported languages.
const (
	LanguageIndonesian Language = "id"
	LanguageEnglish    Language = "en"
)

// ParseLanguage returns the language for a code, defaulting to Indonesian.
func ParseLanguage(code string) Language {
	if Language(code) == LanguageEnglish {
		return LanguageEnglish
	}
	return LanguageIndonesian
}

// Turn is one message in a conversation. Turns are never modified after
// they are appended to a session.
type Turn struct {
	At         time.Time  `json:"at"`
	Statement  *Statement `json:"statement,omitempty"`
	Role       Role       `json:"role"`
	Raw        string     `json:"raw"`
	Normalized string     `json:"normalized,omitempty"`
}

// Session is a conversation between one user and the tracker.
type Session struct {
	CreatedAt     time.Time          `json:"created_at"`
	LastActivity  time.Time          `json:"last_activity"`
	Pending       *PendingAction     `json:"pending,omitempty"`
	Snapshot      *FinancialSnapshot `json:"snapshot,omitempty"`
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	Language      Language           `json:"language"`
	Turns         []Turn             `json:"turns"`
	SnapshotStale bool               `json:"snapshot_stale"`
}
