// Package models defines the entity types held by the client stores and the
// DTO shapes exchanged with the Verdin backend.
package models

import "time"

// SegmentKind identifies the kind of a thread post segment.
type SegmentKind string

const (
	SegmentKindText  SegmentKind = "text"
	SegmentKindImage SegmentKind = "image"
	SegmentKindLink  SegmentKind = "link"
)

// Segment is one ordered piece of a thread's body.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Body string      `json:"body"`
	// URL is set for image and link segments.
	URL string `json:"url,omitempty"`
}

// ThreadStats holds the server-side counters for a thread.
type ThreadStats struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Views    int `json:"views"`
	Saves    int `json:"saves"`
}

// UserRef is a lightweight reference to a user embedded in other entities.
type UserRef struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Thread is the client's view of a single thread.
//
// IsLiked and IsSaved are locally authoritative: a background refresh must
// not overwrite them while an optimistic toggle is in flight. The counters
// in Stats are server authoritative and always take the refreshed value.
type Thread struct {
	ID        string      `json:"id"`
	Author    UserRef     `json:"author"`
	Segments  []Segment   `json:"segments"`
	Stats     ThreadStats `json:"stats"`
	IsLiked   bool        `json:"isLiked"`
	IsSaved   bool        `json:"isSaved"`
	Category  string      `json:"category,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
