package doc

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a prefixed unique id. Prefixes keep ids recognizable in
// payloads and logs: "b" for blocks, "c" for comments, "ai" for suggestions.
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
