package models

// InteractionType categorizes user-triggered interaction events.
type InteractionType string

const (
	InteractionCommentAdded   InteractionType = "comment.added"
	InteractionCommentDeleted InteractionType = "comment.deleted"
	InteractionLikeToggled    InteractionType = "like.toggled"
	InteractionSaveToggled    InteractionType = "save.toggled"
)

// Interaction is a single event published on the interaction bus.
type Interaction struct {
	// Type categorizes the interaction.
	Type InteractionType `json:"type"`

	// ThreadID is the thread the interaction targets.
	ThreadID string `json:"thread_id"`

	// Liked carries the new flag value for like.toggled events.
	Liked bool `json:"liked,omitempty"`

	// Saved carries the new flag value for save.toggled events.
	Saved bool `json:"saved,omitempty"`
}
