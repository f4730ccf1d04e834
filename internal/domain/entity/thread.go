package entity

import "time"

// Thread is a stored conversation.
type Thread struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoredMessage is one recorded turn of a thread.
type StoredMessage struct {
	ID        string
	ThreadID  string
	Role      string
	Text      string
	Images    []string
	CreatedAt time.Time
}
