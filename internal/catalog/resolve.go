package catalog

import (
	"strings"

	"github.com/pbarilla/blog/internal/domain/content"
)

// Resolve returns the catalog entry matching id. The catalog enforces no
// uniqueness; when several records share an id, the last one in catalog
// order wins.
func Resolve(records []content.PostRecord, id string) (content.PostRecord, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return content.PostRecord{}, false
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].ID == id {
			return records[i], true
		}
	}
	return content.PostRecord{}, false
}
