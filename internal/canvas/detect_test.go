package canvas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func detect(body string) Format {
	lines := strings.Split(body, "\n")
	return detectFormat(scanLines(lines), body)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Format
	}{
		{
			name: "heading with metadata comment is v2",
			body: "# Work\n<!-- {\"id\":\"s1\",\"active\":true} -->\n",
			want: FormatV2,
		},
		{
			name: "bare empty heading with metadata comment is v2",
			body: "#\n<!-- {\"id\":\"s1\"} -->\n",
			want: FormatV2,
		},
		{
			name: "set comment marker is v1.1",
			body: "<!-- set: {\"id\":\"s1\",\"name\":\"Work\"} -->\n<!-- prompt: {\"id\":\"p1\"} -->\nhello\n",
			want: FormatV1_1,
		},
		{
			name: "v2 check wins over v1.1 marker",
			body: "# Work\n<!-- {\"id\":\"s1\"} -->\n\n<!-- set: {\"id\":\"old\"} -->\n",
			want: FormatV2,
		},
		{
			name: "heading without adjacent comment is not v2",
			body: "# just a title\n\n<!-- {\"id\":\"x\"} -->\n",
			want: FormatV1_0,
		},
		{
			name: "prompt comment alone is legacy flat",
			body: "<!-- prompt: {\"id\":\"p1\"} -->\nhello\n\n---\n\nworld\n",
			want: FormatV1_0,
		},
		{
			name: "plain text is legacy flat",
			body: "just some prompt text",
			want: FormatV1_0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detect(tt.body))
		})
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "2.0", FormatV2.String())
	assert.Equal(t, "1.1", FormatV1_1.String())
	assert.Equal(t, "1.0", FormatV1_0.String())
}
