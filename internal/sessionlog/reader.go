// Package sessionlog reads Claude Code transcript files. Transcripts are
// JSONL, one entry per line, stored under a projects directory as
// <project>/<session-id>.jsonl. The reader is tolerant: lines that do not
// parse are skipped, never fatal.
package sessionlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

const firstPromptLimit = 120

var ErrSessionNotFound = errors.New("session transcript not found")

type Reader struct {
	root string
}

func NewReader(root string) *Reader {
	return &Reader{root: root}
}

// SessionInfo is what one transcript tells us about itself without keeping
// its content around.
type SessionInfo struct {
	SessionID    string
	StartTime    time.Time
	LastTime     time.Time
	MessageCount int
	FirstPrompt  string
}

type entry struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Message   struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// Scan walks the projects directory and summarizes every transcript found.
// A missing directory yields no sessions rather than an error.
func (r *Reader) Scan() ([]SessionInfo, error) {
	paths, err := r.transcriptPaths()
	if err != nil {
		return nil, err
	}

	var sessions []SessionInfo
	for _, path := range paths {
		info, err := summarizeFile(path)
		if err != nil {
			continue
		}
		if info.MessageCount == 0 {
			continue
		}
		sessions = append(sessions, info)
	}
	return sessions, nil
}

// Excerpt renders a transcript as "role: text" paragraphs, truncated to
// maxBytes, for feeding to a summarizer.
func (r *Reader) Excerpt(sessionID string, maxBytes int) (string, error) {
	path, err := r.find(sessionID)
	if err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var b strings.Builder
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if e.Type != "user" && e.Type != "assistant" {
			continue
		}
		text := contentText(e.Message.Content)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n\n", e.Message.Role, text)
		if b.Len() >= maxBytes {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	excerpt := b.String()
	if len(excerpt) > maxBytes {
		excerpt = excerpt[:maxBytes]
	}
	return excerpt, nil
}

func (r *Reader) transcriptPaths() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".jsonl" {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func (r *Reader) find(sessionID string) (string, error) {
	paths, err := r.transcriptPaths()
	if err != nil {
		return "", err
	}
	for _, path := range paths {
		if strings.TrimSuffix(filepath.Base(path), ".jsonl") == sessionID {
			return path, nil
		}
	}
	return "", ErrSessionNotFound
}

func summarizeFile(path string) (SessionInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return SessionInfo{}, err
	}
	defer file.Close()

	info := SessionInfo{
		SessionID: strings.TrimSuffix(filepath.Base(path), ".jsonl"),
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if e.Type != "user" && e.Type != "assistant" {
			continue
		}
		info.MessageCount++
		if !e.Timestamp.IsZero() {
			if info.StartTime.IsZero() || e.Timestamp.Before(info.StartTime) {
				info.StartTime = e.Timestamp
			}
			if e.Timestamp.After(info.LastTime) {
				info.LastTime = e.Timestamp
			}
		}
		if info.FirstPrompt == "" && e.Type == "user" {
			if text := contentText(e.Message.Content); text != "" {
				info.FirstPrompt = truncate(text, firstPromptLimit)
			}
		}
	}
	return info, scanner.Err()
}

// contentText flattens a message body. Content is either a plain string or
// an array of typed blocks; only text blocks contribute.
func contentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, block := range blocks {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			parts = append(parts, strings.TrimSpace(block.Text))
		}
	}
	return strings.Join(parts, "\n")
}

// truncate cuts on a rune boundary so the stored prompt stays valid UTF-8.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
