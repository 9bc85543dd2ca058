package canvas

import "regexp"

// The parsers consume a flat token stream rather than re-matching regexes
// against lines they have already looked at. One token per input line.
type tokenKind int

const (
	tokenText tokenKind = iota
	tokenBlank
	tokenSeparator
	tokenHeading1
	tokenHeading2
	tokenHeading3
	tokenMetaComment   // <!-- {...} -->
	tokenSetComment    // <!-- set: {...} -->      (v1.1)
	tokenPromptComment // <!-- prompt: {...} -->   (v1.0/v1.1)
)

type token struct {
	kind tokenKind
	text string // heading title or comment JSON payload
	raw  string // the original line, verbatim
}

var (
	// Headings match at most three hashes; four or more is body text. A bare
	// "#" (empty title) is a valid structural heading.
	headingPattern       = regexp.MustCompile(`^(#{1,3})(?:\s+(.*?))?\s*$`)
	metaCommentPattern   = regexp.MustCompile(`^<!--\s*(\{.*\})\s*-->\s*$`)
	setCommentPattern    = regexp.MustCompile(`^<!--\s*set:\s*(\{.*\})\s*-->\s*$`)
	promptCommentPattern = regexp.MustCompile(`^<!--\s*prompt:\s*(\{.*\})\s*-->\s*$`)
	separatorPattern     = regexp.MustCompile(`^-{3,}\s*$`)
	blankPattern         = regexp.MustCompile(`^\s*$`)
)

func scanLines(lines []string) []token {
	tokens := make([]token, 0, len(lines))
	for _, line := range lines {
		tokens = append(tokens, scanLine(line))
	}
	return tokens
}

func scanLine(line string) token {
	if blankPattern.MatchString(line) {
		return token{kind: tokenBlank, raw: line}
	}
	if m := headingPattern.FindStringSubmatch(line); m != nil {
		kind := tokenHeading1
		switch len(m[1]) {
		case 2:
			kind = tokenHeading2
		case 3:
			kind = tokenHeading3
		}
		return token{kind: kind, text: m[2], raw: line}
	}
	if m := setCommentPattern.FindStringSubmatch(line); m != nil {
		return token{kind: tokenSetComment, text: m[1], raw: line}
	}
	if m := promptCommentPattern.FindStringSubmatch(line); m != nil {
		return token{kind: tokenPromptComment, text: m[1], raw: line}
	}
	if m := metaCommentPattern.FindStringSubmatch(line); m != nil {
		return token{kind: tokenMetaComment, text: m[1], raw: line}
	}
	if separatorPattern.MatchString(line) {
		return token{kind: tokenSeparator, raw: line}
	}
	return token{kind: tokenText, raw: line}
}
