package models

// User is the client's view of a profile.
//
// IsFollowing is locally authoritative; every other field is replaced
// wholesale when a fresh server copy arrives.
type User struct {
	Username       string `json:"username"`
	DisplayName    string `json:"displayName,omitempty"`
	Bio            string `json:"bio,omitempty"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	FollowerCount  int    `json:"followerCount"`
	FollowingCount int    `json:"followingCount"`
	IsFollowing    bool   `json:"isFollowing"`
}

// Category is a topic bucket threads can be filed under.
//
// IsFollowedByCurrentUser is locally authoritative. FollowerCount is the
// latest server snapshot; client-side follow toggles adjust it relative to
// that latest value, never a stale one.
type Category struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	FollowerCount           int    `json:"followerCount"`
	IsFollowedByCurrentUser bool   `json:"isFollowedByCurrentUser"`
}
