package canvas

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Codec parses and serializes canvas documents. The ID source and clock are
// injectable so callers (and tests) can pin the ids and timestamps assigned
// to entities that arrive without them.
type Codec struct {
	NewID func() string
	Now   func() time.Time
}

// NewCodec returns a codec backed by random UUIDs and the wall clock.
func NewCodec() *Codec {
	return &Codec{NewID: uuid.NewString, Now: time.Now}
}

// Parse converts raw file text of any supported generation into a canonical
// document using a default codec.
func Parse(text string) *Document {
	return NewCodec().Parse(text)
}

var fileMetaPattern = regexp.MustCompile(`^<!--\s*prompt-canvas:\s*(\{.*\})\s*-->\s*$`)

// Parse is total: malformed metadata degrades to defaults per entity and the
// worst input yields an empty document, never an error.
func (c *Codec) Parse(text string) *Document {
	doc := NewDocument()
	doc.TrailingNewline = strings.HasSuffix(text, "\n")

	lines := strings.Split(text, "\n")
	lines = c.stripFileMetadata(doc, lines)
	body := strings.Join(lines, "\n")
	if strings.TrimSpace(body) == "" {
		return doc
	}

	tokens := scanLines(lines)
	switch detectFormat(tokens, body) {
	case FormatV2:
		c.parseV2(doc, tokens)
	case FormatV1_1:
		c.parseV1_1(doc, tokens)
	default:
		c.parseV1_0(doc, lines)
	}

	doc.forceActiveSet()
	return doc
}

// stripFileMetadata consumes the leading prompt-canvas header comment, if
// any, and returns the remaining lines. The header's version only matters
// transiently; the in-memory document is always canonical.
func (c *Codec) stripFileMetadata(doc *Document, lines []string) []string {
	for i, line := range lines {
		if blankPattern.MatchString(line) {
			continue
		}
		m := fileMetaPattern.FindStringSubmatch(line)
		if m == nil {
			return lines
		}
		var meta FileMetadata
		if err := json.Unmarshal([]byte(m[1]), &meta); err == nil {
			doc.Metadata.Groups = meta.Groups
		}
		doc.Metadata.Version = Version
		return lines[i+1:]
	}
	return lines
}

// setMeta is the permissive shape a set metadata comment decodes into. In
// v2 the name lives in the heading; v1.1 carries it here. Active is a
// pointer so an absent flag can fall back to first-set-wins.
type setMeta struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Active     *bool  `json:"active"`
	Collapsed  bool   `json:"collapsed"`
	Created    string `json:"created"`
	FolderLink string `json:"folderLink"`
}

type sessionMeta struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Collapsed bool   `json:"collapsed"`
}

// parseV2 runs the heading state machine: H1 opens a set, H2 a session, H3
// a prompt; each may be followed by one metadata comment on the next line.
// Separators are cosmetic. Text lines accumulate into the open prompt.
func (c *Codec) parseV2(doc *Document, tokens []token) {
	acc := newPromptAccumulator(doc, true)
	currentSet := ""
	currentSession := ""

	ensureSet := func() {
		if currentSet != "" {
			return
		}
		set := c.newSet(setMeta{}, "", len(doc.Sets) == 0)
		doc.Sets = append(doc.Sets, set)
		currentSet = set.ID
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.kind {
		case tokenHeading1:
			acc.flush()
			meta, consumed := decodeSetMeta(tokens, i)
			i += consumed
			set := c.newSet(meta, tok.text, len(doc.Sets) == 0)
			doc.Sets = append(doc.Sets, set)
			currentSet = set.ID
			currentSession = ""

		case tokenHeading2:
			acc.flush()
			ensureSet()
			meta, consumed := decodeSessionMeta(tokens, i)
			i += consumed
			session := Session{
				ID:        orNewID(meta.ID, c),
				Name:      tok.text,
				SetID:     currentSet,
				Collapsed: meta.Collapsed,
			}
			doc.Sessions = append(doc.Sessions, session)
			currentSession = session.ID

		case tokenHeading3:
			acc.flush()
			ensureSet()
			meta, consumed := decodePromptMeta(tokens, i)
			i += consumed
			meta.Name = tok.text
			// Position under the headings is authoritative over whatever
			// the comment carried.
			meta.SetID = currentSet
			meta.SessionID = currentSession
			acc.begin(c.defaultPrompt(meta))

		case tokenSeparator:
			// cosmetic

		default:
			acc.add(tok.raw)
		}
	}
	acc.flush()
}

// decodeSetMeta reads the metadata comment following a heading, returning
// how many tokens were consumed. Malformed JSON reads as no metadata.
func decodeSetMeta(tokens []token, i int) (setMeta, int) {
	var meta setMeta
	if i+1 < len(tokens) && tokens[i+1].kind == tokenMetaComment {
		if err := json.Unmarshal([]byte(tokens[i+1].text), &meta); err != nil {
			meta = setMeta{}
		}
		return meta, 1
	}
	return meta, 0
}

func decodeSessionMeta(tokens []token, i int) (sessionMeta, int) {
	var meta sessionMeta
	if i+1 < len(tokens) && tokens[i+1].kind == tokenMetaComment {
		if err := json.Unmarshal([]byte(tokens[i+1].text), &meta); err != nil {
			meta = sessionMeta{}
		}
		return meta, 1
	}
	return meta, 0
}

func decodePromptMeta(tokens []token, i int) (PromptMetadata, int) {
	var meta PromptMetadata
	if i+1 < len(tokens) && tokens[i+1].kind == tokenMetaComment {
		if err := json.Unmarshal([]byte(tokens[i+1].text), &meta); err != nil {
			meta = PromptMetadata{}
		}
		return meta, 1
	}
	return meta, 0
}

// newSet builds a set from decoded metadata. A set that does not state its
// active flag is active exactly when it is the first set parsed.
func (c *Codec) newSet(meta setMeta, headingName string, first bool) Set {
	name := headingName
	if name == "" {
		name = meta.Name
	}
	active := first
	if meta.Active != nil {
		active = *meta.Active
	}
	created := meta.Created
	if created == "" {
		created = Timestamp(c.Now())
	}
	return Set{
		ID:         orNewID(meta.ID, c),
		Name:       name,
		Active:     active,
		Collapsed:  meta.Collapsed,
		Created:    created,
		FolderLink: meta.FolderLink,
	}
}

// defaultPrompt fills the fields a prompt cannot live without.
func (c *Codec) defaultPrompt(meta PromptMetadata) PromptMetadata {
	if meta.ID == "" {
		meta.ID = c.NewID()
	}
	if meta.Status == "" {
		meta.Status = StatusQueue
	}
	if meta.Created == "" {
		meta.Created = Timestamp(c.Now())
	}
	return meta
}

func orNewID(id string, c *Codec) string {
	if id != "" {
		return id
	}
	return c.NewID()
}

// promptAccumulator is the flush-on-boundary helper shared by all three
// parsers. Boundary recognition differs per format; buffering, blank-line
// trimming and (for v2) heading demotion do not.
type promptAccumulator struct {
	doc    *Document
	demote bool
	open   bool
	meta   PromptMetadata
	lines  []string
}

func newPromptAccumulator(doc *Document, demote bool) *promptAccumulator {
	return &promptAccumulator{doc: doc, demote: demote}
}

func (a *promptAccumulator) begin(meta PromptMetadata) {
	a.open = true
	a.meta = meta
	a.lines = nil
}

func (a *promptAccumulator) add(line string) {
	if a.open {
		a.lines = append(a.lines, line)
	}
}

func (a *promptAccumulator) flush() {
	if !a.open {
		return
	}
	a.open = false
	if a.meta.ID == "" {
		return
	}
	content := strings.Join(trimBlankLines(a.lines), "\n")
	if a.demote {
		content = DemoteHeadings(content)
	}
	a.doc.Prompts = append(a.doc.Prompts, Prompt{
		ID:       a.meta.ID,
		Content:  content,
		Metadata: a.meta,
	})
}

func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
