package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseV1_0FlatFile(t *testing.T) {
	input := "<!-- prompt-canvas: {\"version\":\"1.0\"} -->\n\n<!-- prompt: {\"id\":\"a\",\"status\":\"queue\",\"created\":\"2024-01-01T00:00:00Z\"} -->\nHello\n\n---\n\n<!-- prompt: {\"id\":\"b\",\"status\":\"done\",\"created\":\"2024-01-02T00:00:00Z\"} -->\nWorld\n"
	doc := testCodec().Parse(input)

	require.Len(t, doc.Sets, 1)
	assert.True(t, doc.Sets[0].Active)
	assert.Equal(t, DefaultSetName, doc.Sets[0].Name)

	require.Len(t, doc.Prompts, 2)
	assert.Equal(t, "a", doc.Prompts[0].ID)
	assert.Equal(t, "Hello", doc.Prompts[0].Content)
	assert.Equal(t, "b", doc.Prompts[1].ID)
	assert.Equal(t, "World", doc.Prompts[1].Content)
	assert.Equal(t, StatusDone, doc.Prompts[1].Metadata.Status)

	assert.Equal(t, doc.Sets[0].ID, doc.Prompts[0].Metadata.SetID)
	assert.Equal(t, doc.Sets[0].ID, doc.Prompts[1].Metadata.SetID)
}

func TestParseV1_0DefaultSetSynthesis(t *testing.T) {
	// no group fields: exactly one set, active, all prompts in order
	input := "first prompt\n\n---\n\nsecond prompt\n\n---\n\nthird prompt\n"
	doc := testCodec().Parse(input)

	require.Len(t, doc.Sets, 1)
	assert.True(t, doc.Sets[0].Active)
	require.Len(t, doc.Prompts, 3)
	for i, want := range []string{"first prompt", "second prompt", "third prompt"} {
		assert.Equal(t, want, doc.Prompts[i].Content)
		assert.Equal(t, doc.Sets[0].ID, doc.Prompts[i].Metadata.SetID)
		assert.Equal(t, StatusQueue, doc.Prompts[i].Metadata.Status)
	}
}

func TestParseV1_0GroupMigration(t *testing.T) {
	input := "<!-- prompt-canvas: {\"version\":\"1.0\",\"groups\":{\"research\":{\"collapsed\":true}}} -->\n\n" +
		"<!-- prompt: {\"id\":\"a\",\"group\":\"research\"} -->\nA\n\n---\n\n" +
		"<!-- prompt: {\"id\":\"b\",\"group\":\"writing\"} -->\nB\n\n---\n\n" +
		"<!-- prompt: {\"id\":\"c\",\"group\":\"research\"} -->\nC\n"
	doc := testCodec().Parse(input)

	// one set per distinct group name, each prompt resolving to its group's set
	research := findSetByName(t, doc, "research")
	writing := findSetByName(t, doc, "writing")
	assert.NotEqual(t, research.ID, writing.ID)
	assert.True(t, research.Collapsed, "collapsed flag inherited from legacy file header")
	assert.False(t, writing.Collapsed)

	require.Len(t, doc.Prompts, 3)
	assert.Equal(t, research.ID, doc.Prompts[0].Metadata.SetID)
	assert.Equal(t, writing.ID, doc.Prompts[1].Metadata.SetID)
	assert.Equal(t, research.ID, doc.Prompts[2].Metadata.SetID)

	// group data is consumed by migration, never carried forward
	for _, p := range doc.Prompts {
		assert.Empty(t, p.Metadata.Group)
	}

	// parsing is deterministic: same input, same shape
	again := testCodec().Parse(input)
	assert.Equal(t, len(doc.Sets), len(again.Sets))
	assert.Equal(t, doc.Prompts[0].Metadata.SetID == doc.Prompts[2].Metadata.SetID,
		again.Prompts[0].Metadata.SetID == again.Prompts[2].Metadata.SetID)
}

func TestParseV1_0MalformedMetadataFallsBack(t *testing.T) {
	input := "<!-- prompt: {broken json -->\nreal content\n"
	doc := testCodec().Parse(input)

	require.Len(t, doc.Prompts, 1)
	p := doc.Prompts[0]
	assert.Equal(t, StatusQueue, p.Metadata.Status)
	assert.Equal(t, testNow, p.Metadata.Created)
	// the unparseable comment stays part of the content
	assert.Contains(t, p.Content, "real content")
}

func TestParseV1_0SkipsEmptySegments(t *testing.T) {
	input := "---\n\nonly one\n\n---\n\n---\n"
	doc := testCodec().Parse(input)
	require.Len(t, doc.Prompts, 1)
	assert.Equal(t, "only one", doc.Prompts[0].Content)
}

func TestParseV1_1SetComments(t *testing.T) {
	input := "<!-- prompt-canvas: {\"version\":\"1.1\"} -->\n\n" +
		"<!-- set: {\"id\":\"s1\",\"name\":\"Work\",\"active\":true} -->\n\n" +
		"<!-- prompt: {\"id\":\"p1\",\"status\":\"queue\"} -->\nfirst body\n\n" +
		"<!-- prompt: {\"id\":\"p2\",\"status\":\"done\"} -->\nsecond body\n\n" +
		"<!-- set: {\"id\":\"s2\",\"name\":\"Play\"} -->\n\n" +
		"<!-- prompt: {\"id\":\"p3\"} -->\nthird body\n"
	doc := testCodec().Parse(input)

	require.Len(t, doc.Sets, 2)
	assert.Equal(t, "Work", doc.Sets[0].Name)
	assert.True(t, doc.Sets[0].Active)
	assert.False(t, doc.Sets[1].Active)
	assert.Empty(t, doc.Sessions, "v1.1 predates sessions")

	require.Len(t, doc.Prompts, 3)
	assert.Equal(t, "s1", doc.Prompts[0].Metadata.SetID)
	assert.Equal(t, "s1", doc.Prompts[1].Metadata.SetID)
	assert.Equal(t, "s2", doc.Prompts[2].Metadata.SetID)
	assert.Equal(t, "first body", doc.Prompts[0].Content)
}

func TestParseV1_1MalformedSetSkipped(t *testing.T) {
	input := "<!-- set: {not valid} -->\n<!-- prompt: {\"id\":\"p1\"} -->\nbody\n"
	doc := testCodec().Parse(input)

	assert.Empty(t, doc.Sets, "skipped set never registered")

	require.Len(t, doc.Prompts, 1)
	assert.Equal(t, "p1", doc.Prompts[0].ID)
}

func TestParseV1_1MalformedPromptFallsBack(t *testing.T) {
	input := "<!-- set: {\"id\":\"s1\",\"name\":\"Work\"} -->\n\n<!-- prompt: {\"id\":} -->\nleft behind\n"
	doc := testCodec().Parse(input)

	require.Len(t, doc.Prompts, 1)
	p := doc.Prompts[0]
	assert.Equal(t, "gen-1", p.ID)
	assert.Equal(t, "s1", p.Metadata.SetID)
	assert.Contains(t, p.Content, "<!-- prompt: {\"id\":} -->")
	assert.Contains(t, p.Content, "left behind")
}

func findSetByName(t *testing.T, doc *Document, name string) Set {
	t.Helper()
	for _, s := range doc.Sets {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no set named %q", name)
	return Set{}
}
