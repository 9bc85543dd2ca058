package canvas

import (
	"encoding/json"
	"strings"
)

// DefaultSetName labels sets this package synthesizes when a legacy file
// (or an orphan prompt) has no set of its own.
const DefaultSetName = "Prompts"

// parseV1_1 handles the set-comment generation: no headings, no sessions,
// entities introduced by "<!-- set: ... -->" and "<!-- prompt: ... -->"
// comments. A malformed set comment skips that set; a malformed prompt
// comment degrades to a default-metadata prompt whose content starts at the
// comment line itself.
func (c *Codec) parseV1_1(doc *Document, tokens []token) {
	acc := newPromptAccumulator(doc, false)
	currentSet := ""

	for _, tok := range tokens {
		switch tok.kind {
		case tokenSetComment:
			acc.flush()
			var meta setMeta
			if err := json.Unmarshal([]byte(tok.text), &meta); err != nil {
				continue
			}
			set := c.newSet(meta, "", len(doc.Sets) == 0)
			doc.Sets = append(doc.Sets, set)
			currentSet = set.ID

		case tokenPromptComment:
			acc.flush()
			var meta PromptMetadata
			if err := json.Unmarshal([]byte(tok.text), &meta); err != nil {
				acc.begin(c.defaultPrompt(assignSet(PromptMetadata{}, currentSet)))
				acc.add(tok.raw)
				continue
			}
			acc.begin(c.defaultPrompt(assignSet(meta, currentSet)))

		case tokenSeparator:
			// leftover v1.0 cosmetics

		default:
			acc.add(tok.raw)
		}
	}
	acc.flush()
}

// parseV1_0 handles the flat generation: prompts delimited by "---" lines,
// each segment optionally led by a prompt comment. One synthetic set is
// created up front and marked active; prompts carrying a legacy group name
// migrate into one set per distinct group instead.
func (c *Codec) parseV1_0(doc *Document, lines []string) {
	def := c.newSet(setMeta{}, DefaultSetName, true)
	doc.Sets = append(doc.Sets, def)

	for _, segment := range splitSegments(lines) {
		c.migrateSegment(doc, def.ID, segment)
	}
}

func splitSegments(lines []string) [][]string {
	var segments [][]string
	var current []string
	for _, line := range lines {
		if separatorPattern.MatchString(line) {
			segments = append(segments, current)
			current = nil
			continue
		}
		current = append(current, line)
	}
	return append(segments, current)
}

func (c *Codec) migrateSegment(doc *Document, defaultSetID string, segment []string) {
	segment = trimBlankLines(segment)
	if len(segment) == 0 {
		return
	}

	var meta PromptMetadata
	rest := segment
	if tok := scanLine(segment[0]); tok.kind == tokenPromptComment {
		if err := json.Unmarshal([]byte(tok.text), &meta); err == nil {
			rest = segment[1:]
		} else {
			// Unparseable metadata: the whole segment, comment included,
			// becomes the content of a default-metadata prompt.
			meta = PromptMetadata{}
		}
	}

	content := strings.Join(trimBlankLines(rest), "\n")
	meta = c.defaultPrompt(meta)

	if meta.Group != "" {
		set := c.ensureGroupSet(doc, meta.Group)
		meta.SetID = set.ID
		meta.Group = "" // migrated; group data is never written back
	} else if meta.SetID == "" {
		meta.SetID = defaultSetID
	}

	doc.Prompts = append(doc.Prompts, Prompt{
		ID:       meta.ID,
		Content:  content,
		Metadata: meta,
	})
}

// ensureGroupSet maps a legacy group name onto a set, reusing one whose name
// matches or creating it with the collapsed flag the file header recorded
// for that group.
func (c *Codec) ensureGroupSet(doc *Document, group string) *Set {
	for i := range doc.Sets {
		if doc.Sets[i].Name == group {
			return &doc.Sets[i]
		}
	}
	doc.Sets = append(doc.Sets, Set{
		ID:        c.NewID(),
		Name:      group,
		Collapsed: doc.Metadata.Groups[group].Collapsed,
		Created:   Timestamp(c.Now()),
	})
	return &doc.Sets[len(doc.Sets)-1]
}

func assignSet(meta PromptMetadata, setID string) PromptMetadata {
	if meta.SetID == "" {
		meta.SetID = setID
	}
	return meta
}
