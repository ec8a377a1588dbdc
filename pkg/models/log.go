package models

// LogEntry is an append-only audit line written by any subsystem
type LogEntry struct {
	ID     int64  `json:"id" db:"id"`
	TS     int64  `json:"ts" db:"ts"`
	Source string `json:"source" db:"source"`
	Text   string `json:"text" db:"text"`
}
