package models

import "time"

// Comment is a single reply on a thread.
type Comment struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	Author    UserRef   `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
