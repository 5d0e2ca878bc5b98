package config

import "time"

// Editor tuning. The session and save pipeline default to these when their
// config leaves the durations zero.
const (
	// DefaultSaveDebounce is the quiet period after the last mutation
	// before the editor auto-saves. A typing burst collapses to one save.
	DefaultSaveDebounce = 1500 * time.Millisecond

	// DefaultReapplyThrottle caps highlight re-application to one pass per
	// interval while mutations keep arriving.
	DefaultReapplyThrottle = 200 * time.Millisecond

	// DefaultSavedWindow is how long the "saved" status stays visible
	// before dropping back to idle.
	DefaultSavedWindow = 2 * time.Second
)

const (
	// MaxDocumentTitleLength is the maximum length for document titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxDocumentTitleLength = 255

	// MaxTemplateNameLength is the maximum length for template names.
	// Template names double as slugs in URLs, so they stay short.
	MaxTemplateNameLength = 100

	// MaxCommentLength is the maximum length for a comment or reply body.
	MaxCommentLength = 4000

	// MaxAuthorLength is the maximum length for a comment author name.
	MaxAuthorLength = 255

	// MaxSelectionLength is the maximum length for an anchored text
	// selection carried by comments and suggestions. Longer selections
	// indicate the client sent whole-document text by mistake.
	MaxSelectionLength = 10000

	// MaxImproveTextLength is the maximum length of text accepted by the
	// improve endpoint. Keeps single calls inside one model request.
	MaxImproveTextLength = 20000
)
