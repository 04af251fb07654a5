package models

import "time"

// Session is the per-login state the portal keeps between requests.
// It is only ever read by the HTTP layer, which passes Period and the
// roster to the invoice core explicitly.
type Session struct {
	ID           string    `json:"id"`
	User         string    `json:"user"`
	Period       Period    `json:"period"`
	WorkbookID   string    `json:"workbookId,omitempty"`
	WorkbookName string    `json:"workbookName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewSession creates a Session holding the default period.
func NewSession(id, user string) *Session {
	return &Session{
		ID:        id,
		User:      user,
		Period:    DefaultPeriod,
		CreatedAt: time.Now(),
	}
}
