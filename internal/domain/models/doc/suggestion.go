package doc

import "time"

// SuggestionStatus is the lifecycle state of an AI suggestion.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionAccepted SuggestionStatus = "accepted"
	SuggestionRejected SuggestionStatus = "rejected"
)

// Valid reports whether s is one of the known lifecycle states.
func (s SuggestionStatus) Valid() bool {
	switch s {
	case SuggestionPending, SuggestionAccepted, SuggestionRejected:
		return true
	}
	return false
}

// MarkStatus maps the lifecycle state to the visual mark carried by runs.
func (s SuggestionStatus) MarkStatus() MarkStatus {
	switch s {
	case SuggestionAccepted:
		return MarkApplied
	case SuggestionRejected:
		return MarkRejected
	default:
		return MarkSuggested
	}
}

// Suggestion is an AI-proposed text replacement. Created pending; accepting
// it performs the in-place replacement and keeps the suggestion visible as a
// historical AI edit, rejecting it only removes the highlight.
type Suggestion struct {
	ID            string           `json:"id"`
	DocumentID    string           `json:"document_id"`
	BlockID       string           `json:"block_id"`
	SelectionText string           `json:"selection_text"`
	ImprovedText  string           `json:"improved_text"`
	Reason        string           `json:"reason,omitempty"`
	Status        SuggestionStatus `json:"status"`
	StartOffset   *int             `json:"start_offset,omitempty"`
	EndOffset     *int             `json:"end_offset,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
