// Package editor is the editing host around the canvas codec: it owns one
// canvas file, applies user operations to the in-memory document, writes the
// serialized result back, and reloads when the file changes underneath it.
package editor

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"github.com/talmo/prompt-canvas/internal/canvas"
)

var (
	ErrPromptNotFound  = errors.New("prompt not found")
	ErrSetNotFound     = errors.New("set not found")
	ErrSessionNotFound = errors.New("session not found")
)

type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Editor serializes all access to the document behind one mutex; the codec
// itself is pure, so this is the only place concurrency matters.
type Editor struct {
	path   string
	codec  *canvas.Codec
	logger Logger

	mu  sync.Mutex
	doc *canvas.Document

	// pendingWrite marks a write we made ourselves so the watcher does not
	// re-parse it as an external change; lastWritten holds the bytes of that
	// write so an external edit landing in the same debounce window is still
	// seen as a change.
	pendingWrite atomic.Bool
	lastWritten  []byte
	onReload     func(*canvas.Document)
}

func New(path string, codec *canvas.Codec, logger Logger) *Editor {
	if codec == nil {
		codec = canvas.NewCodec()
	}
	return &Editor{
		path:  path,
		codec: codec,
		doc:   canvas.NewDocument(),

		logger: logger,
	}
}

// Path returns the canvas file this editor owns.
func (e *Editor) Path() string { return e.path }

// OnReload registers a callback invoked after an external change replaced
// the document. Must be set before Watch starts.
func (e *Editor) OnReload(fn func(*canvas.Document)) { e.onReload = fn }

// Load reads and parses the canvas file. A missing file is an empty canvas,
// not an error.
func (e *Editor) Load() error {
	data, err := os.ReadFile(e.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	doc := e.codec.Parse(string(data))

	e.mu.Lock()
	e.doc = doc
	e.mu.Unlock()
	return nil
}

// Document returns a snapshot; callers never see the live document.
func (e *Editor) Document() *canvas.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// save serializes the live document and writes it out. Called with e.mu
// held. Orphan prompts get their synthesized set materialized in memory so
// repeated saves reuse the same set instead of minting a new one each time.
func (e *Editor) save() error {
	text, assignments := e.codec.Serialize(e.doc)
	if len(assignments) > 0 {
		e.applyAssignments(assignments)
	}
	e.lastWritten = []byte(text)
	e.pendingWrite.Store(true)
	return os.WriteFile(e.path, e.lastWritten, 0o644)
}

func (e *Editor) applyAssignments(assignments map[string]string) {
	var synthID string
	for id, setID := range assignments {
		synthID = setID
		if p := e.doc.PromptByID(id); p != nil {
			p.Metadata.SetID = setID
		}
	}
	if e.doc.SetByID(synthID) == nil {
		e.doc.Sets = append(e.doc.Sets, canvas.Set{
			ID:      synthID,
			Name:    canvas.DefaultSetName,
			Active:  e.doc.ActiveSet() == nil,
			Created: canvas.Timestamp(e.codec.Now()),
		})
	}
}

func (e *Editor) logInfo(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Editor) logError(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Error(msg, args...)
	}
}
