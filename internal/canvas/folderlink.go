package canvas

import "regexp"

// Investigation folders follow a scratch/YYYY-MM-DD-name/ convention.
var folderLinkPattern = regexp.MustCompile(`scratch/\d{4}-\d{2}-\d{2}-[^/\s]+/`)

// DetectFolderLink returns the first investigation-folder path found in a
// prompt body, or "" when there is none. Callers use it to auto-populate a
// prompt's folderLink; the parser itself never interprets the value.
func DetectFolderLink(content string) string {
	return folderLinkPattern.FindString(content)
}
