package models

// Page is the backend's pagination envelope.
type Page[T any] struct {
	Content       []T  `json:"content"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Size          int  `json:"size"`
	Number        int  `json:"number"`
	Last          bool `json:"last"`
}
