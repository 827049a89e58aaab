package domains

import (
	"encoding/json"
	"time"
)

type TemplateCreate struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Version     int             `json:"version"`
	Schema      json.RawMessage `json:"schema"`
}

// Template is an evaluation form under authoring. Assignments snapshot the
// published schema at creation time; the snapshot never follows later edits.
type Template struct {
	ID                  int64           `json:"id"`
	OwnerID             int64           `json:"owner_id"`
	Title               string          `json:"title"`
	Description         *string         `json:"description,omitempty"`
	Version             int             `json:"version"`
	Status              string          `json:"status"`
	DraftSchemaJSON     json.RawMessage `json:"draft_schema_json"`
	PublishedSchemaJSON json.RawMessage `json:"published_schema_json,omitempty"`
	UpdatedAt           time.Time       `json:"updated_at"`
	PublishedAt         *time.Time      `json:"published_at,omitempty"`
}
