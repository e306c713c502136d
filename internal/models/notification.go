package models

import "time"

// NotificationType categorizes push notifications.
type NotificationType string

const (
	NotificationTypeLike    NotificationType = "like"
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeFollow  NotificationType = "follow"
	NotificationTypeMention NotificationType = "mention"
	NotificationTypeSystem  NotificationType = "system"
)

// Notification is a single push payload delivered on the per-session topic.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Actor     UserRef          `json:"actor"`
	ThreadID  string           `json:"threadId,omitempty"`
	Message   string           `json:"message,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
