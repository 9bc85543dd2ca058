package canvas

import "strings"

// Format identifies one of the three on-disk generations.
type Format int

const (
	FormatV2 Format = iota
	FormatV1_1
	FormatV1_0
)

func (f Format) String() string {
	switch f {
	case FormatV2:
		return "2.0"
	case FormatV1_1:
		return "1.1"
	default:
		return "1.0"
	}
}

const setCommentMarker = "<!-- set:"

// detectFormat classifies tokenized body text (file-level header already
// stripped). The v2 signature is a structural heading whose very next line
// is a bare JSON metadata comment; that check runs first because v1.1 prose
// can contain lines that look like headings. The heuristic is best-effort:
// a v1.1 file with a "# ..." line immediately followed by an unrelated JSON
// comment will be read as v2.
func detectFormat(tokens []token, body string) Format {
	for i := 0; i+1 < len(tokens); i++ {
		if isHeading(tokens[i].kind) && tokens[i+1].kind == tokenMetaComment {
			return FormatV2
		}
	}
	if strings.Contains(body, setCommentMarker) {
		return FormatV1_1
	}
	return FormatV1_0
}

func isHeading(k tokenKind) bool {
	return k == tokenHeading1 || k == tokenHeading2 || k == tokenHeading3
}
