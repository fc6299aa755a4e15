package query

import (
	"strings"

	"github.com/kailas-cloud/docqa/internal/domain"
)

// BuildContext concatenates retrieved documents into the grounding context.
// Each document becomes a "Title: …\nContent: …" block; blocks are joined by
// a blank line in the store-provided order. No re-ranking, no truncation —
// if the combined context exceeds the model's input limit, the generation
// call reports it.
func BuildContext(docs []domain.Document) string {
	blocks := make([]string, 0, len(docs))
	for _, d := range docs {
		blocks = append(blocks, "Title: "+d.Title+"\nContent: "+d.Content)
	}
	return strings.Join(blocks, "\n\n")
}
