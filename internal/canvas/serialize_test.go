package canvas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canonicalDocument() *Document {
	return &Document{
		Metadata: FileMetadata{Version: Version},
		Sets: []Set{
			{ID: "s1", Name: "Work", Active: true, Created: "2024-01-01T00:00:00Z"},
		},
		Sessions: []Session{
			{ID: "ss1", Name: "Morning", SetID: "s1"},
		},
		Prompts: []Prompt{
			{
				ID:      "p1",
				Content: "Hello",
				Metadata: PromptMetadata{
					ID: "p1", Name: "First", SetID: "s1",
					Status: StatusQueue, Created: "2024-01-01T00:00:00Z",
				},
			},
			{
				ID:      "p2",
				Content: "# Step 1\nDo X",
				Metadata: PromptMetadata{
					ID: "p2", SetID: "s1", SessionID: "ss1",
					Status: StatusDone, Created: "2024-01-02T00:00:00Z",
				},
			},
		},
		TrailingNewline: true,
	}
}

func TestSerializeCanonicalShape(t *testing.T) {
	text, assignments := testCodec().Serialize(canonicalDocument())

	assert.Empty(t, assignments)
	assert.True(t, strings.HasPrefix(text, "<!-- prompt-canvas: {\"version\":\"2.0\"} -->\n"))
	assert.Contains(t, text, "# Work\n<!-- {\"id\":\"s1\",\"active\":true,\"created\":\"2024-01-01T00:00:00Z\"} -->")
	assert.Contains(t, text, "## Morning\n<!-- {\"id\":\"ss1\"} -->")
	assert.Contains(t, text, "### First\n")
	// body headings are promoted on the way out
	assert.Contains(t, text, "#### Step 1\nDo X")
	assert.NotContains(t, text, "\n# Step 1")
	assert.True(t, strings.HasSuffix(text, "\n"))
	assert.False(t, strings.HasSuffix(text, "\n\n"))
}

func TestRoundTripStability(t *testing.T) {
	doc := canonicalDocument()
	text, _ := testCodec().Serialize(doc)

	parsed := testCodec().Parse(text)
	assert.Equal(t, doc, parsed)

	// and a second generation is byte-identical
	again, _ := testCodec().Serialize(parsed)
	assert.Equal(t, text, again)
}

func TestSerializeEmptySetPruned(t *testing.T) {
	doc := canonicalDocument()
	doc.Sets = append(doc.Sets, Set{ID: "empty", Name: "Nothing here", Created: "2024-02-01T00:00:00Z"})

	text, _ := testCodec().Serialize(doc)
	assert.NotContains(t, text, "Nothing here")
	assert.NotContains(t, text, "empty")
}

func TestSerializeEmptySessionPruned(t *testing.T) {
	doc := canonicalDocument()
	doc.Sessions = append(doc.Sessions, Session{ID: "ss2", Name: "Evening", SetID: "s1"})

	text, _ := testCodec().Serialize(doc)
	assert.NotContains(t, text, "Evening")
}

func TestSerializeOrphanSynthesis(t *testing.T) {
	doc := &Document{
		Metadata: FileMetadata{Version: Version},
		Prompts: []Prompt{
			{ID: "p1", Content: "stray", Metadata: PromptMetadata{ID: "p1", Status: StatusQueue, Created: "2024-01-01T00:00:00Z"}},
		},
	}

	text, assignments := testCodec().Serialize(doc)

	require.Len(t, assignments, 1)
	assert.Equal(t, "gen-1", assignments["p1"])
	assert.Contains(t, text, "# "+DefaultSetName)
	assert.Contains(t, text, "\"active\":true", "synthesized set is active when no other sets exist")
	assert.Contains(t, text, "\"setId\":\"gen-1\"")

	// the input document itself is untouched
	assert.Empty(t, doc.Prompts[0].Metadata.SetID)
	assert.Empty(t, doc.Sets)
}

func TestSerializeOrphanSetInactiveWhenSetsExist(t *testing.T) {
	doc := canonicalDocument()
	doc.Prompts = append(doc.Prompts, Prompt{
		ID: "p3", Content: "stray",
		Metadata: PromptMetadata{ID: "p3", Status: StatusQueue, Created: "2024-01-03T00:00:00Z"},
	})

	text, assignments := testCodec().Serialize(doc)
	require.Len(t, assignments, 1)
	// exactly one active set in the output
	assert.Equal(t, 1, strings.Count(text, "\"active\":true"))
}

func TestSerializeDanglingSetIDTreatedAsOrphan(t *testing.T) {
	doc := canonicalDocument()
	doc.Prompts[0].Metadata.SetID = "ghost"

	text, assignments := testCodec().Serialize(doc)
	assert.Equal(t, map[string]string{"p1": "gen-1"}, assignments)
	assert.Contains(t, text, "# "+DefaultSetName)
}

func TestSerializeEmptyDocument(t *testing.T) {
	doc := NewDocument()
	text, assignments := testCodec().Serialize(doc)

	assert.Empty(t, assignments)
	assert.Equal(t, "<!-- prompt-canvas: {\"version\":\"2.0\"} -->", text)
}

func TestSerializeTrailingNewlinePreserved(t *testing.T) {
	doc := NewDocument()
	doc.TrailingNewline = true
	text, _ := testCodec().Serialize(doc)
	assert.Equal(t, "<!-- prompt-canvas: {\"version\":\"2.0\"} -->\n", text)
}

func TestSerializeLegacyGroupNeverWritten(t *testing.T) {
	doc := canonicalDocument()
	doc.Metadata.Groups = map[string]GroupMetadata{"old": {Collapsed: true}}
	doc.Prompts[0].Metadata.Group = "old"

	text, _ := testCodec().Serialize(doc)
	assert.NotContains(t, text, "group")
}

func TestSerializeUnknownStatusPreserved(t *testing.T) {
	doc := canonicalDocument()
	doc.Prompts[0].Metadata.Status = Status("paused")

	text, _ := testCodec().Serialize(doc)
	assert.Contains(t, text, "\"status\":\"paused\"")
}

func TestSerializePromotedBodyRoundTrips(t *testing.T) {
	doc := canonicalDocument()
	text, _ := testCodec().Serialize(doc)

	parsed := testCodec().Parse(text)
	require.Len(t, parsed.Prompts, 2)
	assert.Equal(t, "# Step 1\nDo X", parsed.Prompts[1].Content)
}

func TestLegacyUpgradeRoundTrip(t *testing.T) {
	legacy := "<!-- prompt-canvas: {\"version\":\"1.0\"} -->\n\n<!-- prompt: {\"id\":\"a\"} -->\nHello\n\n---\n\n<!-- prompt: {\"id\":\"b\"} -->\nWorld\n"
	doc := testCodec().Parse(legacy)
	text, assignments := testCodec().Serialize(doc)

	assert.Empty(t, assignments, "migrated prompts already point at the synthesized set")
	assert.Contains(t, text, "\"version\":\"2.0\"")
	assert.NotContains(t, text, "---", "flat separators do not survive the upgrade")

	upgraded := testCodec().Parse(text)
	require.Len(t, upgraded.Prompts, 2)
	assert.Equal(t, "a", upgraded.Prompts[0].ID)
	assert.Equal(t, "b", upgraded.Prompts[1].ID)
	assert.Equal(t, "Hello", upgraded.Prompts[0].Content)
}
