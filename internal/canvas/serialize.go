package canvas

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Serialize renders doc as canonical v2.0 markdown using a default codec.
func Serialize(doc *Document) (string, map[string]string) {
	return NewCodec().Serialize(doc)
}

// setComment and sessionComment are the exact shapes written next to set and
// session headings. Names live in the headings themselves.
type setComment struct {
	ID         string `json:"id"`
	Active     bool   `json:"active"`
	Collapsed  bool   `json:"collapsed,omitempty"`
	Created    string `json:"created,omitempty"`
	FolderLink string `json:"folderLink,omitempty"`
}

type sessionComment struct {
	ID        string `json:"id"`
	Collapsed bool   `json:"collapsed,omitempty"`
}

// Serialize emits the latest format regardless of what was read; saving is
// a one-way upgrade. It never mutates doc: prompts whose setId references
// no known set are written under a synthesized set, and the id they were
// given comes back in the assignments map (prompt id -> set id) for the
// caller to persist if it wants the normalization to stick. Sets and
// sessions with no prompts are pruned from the output entirely.
func (c *Codec) Serialize(doc *Document) (string, map[string]string) {
	assignments := map[string]string{}

	known := make(map[string]bool, len(doc.Sets))
	for _, set := range doc.Sets {
		known[set.ID] = true
	}

	bySet := map[string][]Prompt{}
	var orphans []Prompt
	for _, p := range doc.Prompts {
		if known[p.Metadata.SetID] {
			bySet[p.Metadata.SetID] = append(bySet[p.Metadata.SetID], p)
		} else {
			orphans = append(orphans, p)
		}
	}

	order := append([]Set(nil), doc.Sets...)
	if len(orphans) > 0 {
		synth := Set{
			ID:      c.NewID(),
			Name:    DefaultSetName,
			Active:  len(doc.Sets) == 0,
			Created: Timestamp(c.Now()),
		}
		for _, p := range orphans {
			assignments[p.ID] = synth.ID
		}
		bySet[synth.ID] = orphans
		order = append(order, synth)
	}

	var blocks []string
	for _, set := range order {
		prompts := bySet[set.ID]
		if len(prompts) == 0 {
			continue
		}
		blocks = append(blocks, c.renderSet(doc, set, prompts))
	}

	text := "<!-- prompt-canvas: " + marshalComment(FileMetadata{Version: Version}) + " -->"
	if len(blocks) > 0 {
		text += "\n\n" + strings.Join(blocks, "\n\n")
	}
	text = strings.TrimRight(text, "\n")
	if doc.TrailingNewline || len(doc.Prompts) > 0 {
		text += "\n"
	}
	return text, assignments
}

func (c *Codec) renderSet(doc *Document, set Set, prompts []Prompt) string {
	lines := []string{
		headingLine(1, set.Name),
		wrapComment(setComment{
			ID:         set.ID,
			Active:     set.Active,
			Collapsed:  set.Collapsed,
			Created:    set.Created,
			FolderLink: set.FolderLink,
		}),
	}

	var sessions []Session
	owned := map[string]bool{}
	for _, s := range doc.Sessions {
		if s.SetID == set.ID {
			sessions = append(sessions, s)
			owned[s.ID] = true
		}
	}

	bySession := map[string][]Prompt{}
	var loose []Prompt
	for _, p := range prompts {
		sid := p.Metadata.SessionID
		if sid != "" && owned[sid] {
			bySession[sid] = append(bySession[sid], p)
		} else {
			loose = append(loose, p)
		}
	}

	for _, p := range loose {
		lines = append(lines, "")
		lines = append(lines, renderPrompt(p, set.ID, owned)...)
	}
	for _, s := range sessions {
		grouped := bySession[s.ID]
		if len(grouped) == 0 {
			continue
		}
		lines = append(lines, "", headingLine(2, s.Name), wrapComment(sessionComment{ID: s.ID, Collapsed: s.Collapsed}))
		for _, p := range grouped {
			lines = append(lines, "")
			lines = append(lines, renderPrompt(p, set.ID, owned)...)
		}
	}
	return strings.Join(lines, "\n")
}

func renderPrompt(p Prompt, setID string, ownedSessions map[string]bool) []string {
	meta := p.Metadata
	meta.ID = p.ID
	meta.SetID = setID
	meta.Group = ""
	if meta.SessionID != "" && !ownedSessions[meta.SessionID] {
		meta.SessionID = ""
	}
	if meta.Status == "" {
		meta.Status = StatusQueue
	}

	lines := []string{headingLine(3, meta.Name), wrapComment(meta)}
	if p.Content != "" {
		lines = append(lines, strings.Split(PromoteHeadings(p.Content), "\n")...)
	}
	return lines
}

func headingLine(level int, name string) string {
	hashes := strings.Repeat("#", level)
	if name == "" {
		return hashes
	}
	return hashes + " " + name
}

func wrapComment(v any) string {
	return "<!-- " + marshalComment(v) + " -->"
}

// marshalComment encodes without HTML escaping so comments stay readable;
// json.Encoder is the only stdlib path that allows turning it off.
func marshalComment(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}
