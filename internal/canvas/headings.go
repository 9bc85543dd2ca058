package canvas

import "strings"

// Structural headings own levels 1-3, so prompt bodies store their own
// headings shifted down three levels on disk. The pairs are ordered longest
// prefix first; replacing "# " before "### " would corrupt deeper headings.
var headingShifts = [...]struct{ body, disk string }{
	{"### ", "###### "},
	{"## ", "##### "},
	{"# ", "#### "},
}

// PromoteHeadings rewrites body heading lines (levels 1-3) to their on-disk
// levels (4-6) so a re-parse cannot mistake them for structure. Levels 4-6
// authored directly in a body are indistinguishable from promoted output and
// are therefore not supported; DemoteHeadings will pull them up.
func PromoteHeadings(content string) string {
	return shiftHeadings(content, func(line string) string {
		for _, s := range headingShifts {
			if strings.HasPrefix(line, s.body) {
				return s.disk + line[len(s.body):]
			}
		}
		return line
	})
}

// DemoteHeadings is the inverse of PromoteHeadings, applied when a prompt
// body is read back out of the file.
func DemoteHeadings(content string) string {
	return shiftHeadings(content, func(line string) string {
		for _, s := range headingShifts {
			if strings.HasPrefix(line, s.disk) {
				return s.body + line[len(s.disk):]
			}
		}
		return line
	})
}

func shiftHeadings(content string, shift func(string) string) string {
	if !strings.Contains(content, "#") {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = shift(line)
	}
	return strings.Join(lines, "\n")
}
