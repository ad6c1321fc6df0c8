package models

// Item is a content item arranged in the shared space. Items are created and
// destroyed by the external content layer; the core references them by ID
// only and treats unresolved IDs as "not found" rather than as errors.
type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Creator     string   `json:"creator"`
	Subjects    []string `json:"subjects,omitempty"`
}
