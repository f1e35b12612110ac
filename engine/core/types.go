package core

import "encoding/json"

// -----------------------------------------------------------------------------
// Output
// -----------------------------------------------------------------------------

// Output is the generic carrier for structured LLM responses after JSON
// decoding and schema validation.
type Output map[string]any

// AsJSON renders the output as indented JSON for downstream prompts.
func (o Output) AsJSON() (string, error) {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// -----------------------------------------------------------------------------
// Document
// -----------------------------------------------------------------------------

// Document is a locally loaded advisory source file. Documents are
// read-only context for specialist prompts and are never persisted back.
type Document struct {
	Filename     string         `json:"filename"`
	Content      string         `json:"content"`
	DocumentType string         `json:"document_type,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Excerpt returns the document content truncated to limit characters.
// Truncation is rune-based so a multi-byte character is never split.
// Specialist prompts never receive full documents.
func (d *Document) Excerpt(limit int) string {
	if limit <= 0 {
		return d.Content
	}
	runes := []rune(d.Content)
	if len(runes) <= limit {
		return d.Content
	}
	return string(runes[:limit])
}

// CloneMap performs a shallow copy of a metadata map.
func CloneMap[K comparable, V any](src map[K]V) map[K]V {
	if src == nil {
		return nil
	}
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
