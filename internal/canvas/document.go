// Package canvas implements the prompt-canvas markdown format: a plain
// markdown file carrying sets, sessions and prompts as H1/H2/H3 headings,
// each followed by a JSON metadata comment. Three on-disk generations exist
// (v1.0 flat, v1.1 set-comment based, v2.0 heading based); parsing always
// migrates to the canonical v2.0 shape and serializing always emits it.
package canvas

import "time"

// Version is the canonical schema version written to every file.
const Version = "2.0"

// Status is a prompt's lifecycle state. The set of known values is closed,
// but unknown values read from disk are preserved verbatim so a newer
// writer's data is never silently dropped.
type Status string

const (
	StatusQueue  Status = "queue"
	StatusActive Status = "active"
	StatusDone   Status = "done"
	StatusTrash  Status = "trash"
)

// Known reports whether s is one of the statuses this version writes.
func (s Status) Known() bool {
	switch s {
	case StatusQueue, StatusActive, StatusDone, StatusTrash:
		return true
	}
	return false
}

// FileMetadata is the file-level header comment payload. Groups only ever
// appears in v1.x files; it is read for migration and never written back.
type FileMetadata struct {
	Version string                   `json:"version"`
	Groups  map[string]GroupMetadata `json:"groups,omitempty"`
}

// GroupMetadata carries per-group display state from legacy files.
type GroupMetadata struct {
	Collapsed bool `json:"collapsed,omitempty"`
}

// Set is a top-level grouping of prompts (an H1 in the file). Exactly one
// set among non-empty sets is active at a time.
type Set struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Active     bool   `json:"active"`
	Collapsed  bool   `json:"collapsed"`
	Created    string `json:"created,omitempty"`
	FolderLink string `json:"folderLink,omitempty"`
}

// Session is an optional grouping of prompts within a set (an H2).
type Session struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SetID     string `json:"setId"`
	Collapsed bool   `json:"collapsed"`
}

// PromptMetadata is the per-prompt metadata comment payload. Timestamps are
// kept as the ISO strings found on disk so rewrites never churn them.
type PromptMetadata struct {
	ID              string `json:"id"`
	Name            string `json:"name,omitempty"`
	SetID           string `json:"setId,omitempty"`
	SessionID       string `json:"sessionId,omitempty"`
	Group           string `json:"group,omitempty"`
	Status          Status `json:"status"`
	Created         string `json:"created,omitempty"`
	Updated         string `json:"updated,omitempty"`
	FolderLink      string `json:"folderLink,omitempty"`
	ClaudeSessionID string `json:"claudeSessionId,omitempty"`
	ClaudeMessageID string `json:"claudeMessageId,omitempty"`
	ExecutedAt      string `json:"executedAt,omitempty"`
	ResponsePreview string `json:"responsePreview,omitempty"`
}

// Prompt is one unit of text with a lifecycle status (an H3). Content holds
// the raw body with headings at their authored levels; promotion happens
// only on serialize.
type Prompt struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata PromptMetadata `json:"metadata"`
}

// Document is the canonical in-memory representation every parser produces
// and the serializer consumes. Slice order is authoritative: sets serialize
// in Sets order, and a prompt's position within its set/session grouping is
// its position in Prompts.
type Document struct {
	Metadata        FileMetadata `json:"fileMetadata"`
	Sets            []Set        `json:"sets"`
	Sessions        []Session    `json:"sessions"`
	Prompts         []Prompt     `json:"prompts"`
	TrailingNewline bool         `json:"-"`
}

// NewDocument returns an empty document at the canonical version.
func NewDocument() *Document {
	return &Document{
		Metadata: FileMetadata{Version: Version},
		Sets:     []Set{},
		Sessions: []Session{},
		Prompts:  []Prompt{},
	}
}

// Clone returns a deep copy. Callers that hand documents across goroutines
// clone first; the codec itself never mutates its input.
func (d *Document) Clone() *Document {
	out := &Document{
		Metadata:        d.Metadata,
		Sets:            append([]Set(nil), d.Sets...),
		Sessions:        append([]Session(nil), d.Sessions...),
		Prompts:         append([]Prompt(nil), d.Prompts...),
		TrailingNewline: d.TrailingNewline,
	}
	if d.Metadata.Groups != nil {
		out.Metadata.Groups = make(map[string]GroupMetadata, len(d.Metadata.Groups))
		for k, v := range d.Metadata.Groups {
			out.Metadata.Groups[k] = v
		}
	}
	return out
}

// SetByID returns a pointer into Sets, or nil.
func (d *Document) SetByID(id string) *Set {
	for i := range d.Sets {
		if d.Sets[i].ID == id {
			return &d.Sets[i]
		}
	}
	return nil
}

// SessionByID returns a pointer into Sessions, or nil.
func (d *Document) SessionByID(id string) *Session {
	for i := range d.Sessions {
		if d.Sessions[i].ID == id {
			return &d.Sessions[i]
		}
	}
	return nil
}

// PromptByID returns a pointer into Prompts, or nil.
func (d *Document) PromptByID(id string) *Prompt {
	for i := range d.Prompts {
		if d.Prompts[i].ID == id {
			return &d.Prompts[i]
		}
	}
	return nil
}

// ActiveSet returns the active set, or nil when the document has none.
func (d *Document) ActiveSet() *Set {
	for i := range d.Sets {
		if d.Sets[i].Active {
			return &d.Sets[i]
		}
	}
	return nil
}

// forceActiveSet restores the invariant that some set is active after a
// parse: when no set claimed the flag, the first one gets it.
func (d *Document) forceActiveSet() {
	if len(d.Sets) == 0 || d.ActiveSet() != nil {
		return
	}
	d.Sets[0].Active = true
}

// Timestamp formats t the way metadata comments store time.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
