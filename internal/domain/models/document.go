package models

import (
	"time"

	"redline/internal/domain/models/doc"
)

// Document is a policy document under review: the persisted markdown plus
// the flat block metadata the editor converts into its block tree.
// OriginalMarkdown keeps the text as it stood before the first reviewed
// save, so AI edits stay diffable against the source.
type Document struct {
	ID               string              `json:"id" db:"id"`
	Title            string              `json:"title" db:"title"`
	Markdown         string              `json:"markdown" db:"markdown"`
	OriginalMarkdown string              `json:"original_markdown,omitempty" db:"original_markdown"`
	Blocks           []doc.BlockMetadata `json:"block_metadata"`
	TemplateName     string              `json:"template_name,omitempty" db:"template_name"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`
}

// DocumentSummary is the list-view projection: no markdown or blocks.
type DocumentSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	TemplateName string    `json:"template_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
