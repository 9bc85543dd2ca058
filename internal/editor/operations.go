package editor

import (
	"slices"
	"unicode/utf8"

	"github.com/talmo/prompt-canvas/internal/canvas"
)

const responsePreviewLimit = 200

// AddPromptInput places a new prompt. An empty SetID targets the active set
// (or leaves the prompt for default-set synthesis when there is none); a
// SessionID implies its owning set.
type AddPromptInput struct {
	SetID     string
	SessionID string
	Name      string
	Content   string
}

func (e *Editor) AddPrompt(input AddPromptInput) (canvas.Prompt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	setID := input.SetID
	sessionID := input.SessionID
	if sessionID != "" {
		session := e.doc.SessionByID(sessionID)
		if session == nil {
			return canvas.Prompt{}, ErrSessionNotFound
		}
		if setID == "" {
			setID = session.SetID
		} else if setID != session.SetID {
			return canvas.Prompt{}, ErrSessionNotFound
		}
	}
	if setID == "" {
		if active := e.doc.ActiveSet(); active != nil {
			setID = active.ID
		}
	} else if e.doc.SetByID(setID) == nil {
		return canvas.Prompt{}, ErrSetNotFound
	}

	now := canvas.Timestamp(e.codec.Now())
	prompt := canvas.Prompt{
		ID:      e.codec.NewID(),
		Content: input.Content,
		Metadata: canvas.PromptMetadata{
			Name:       input.Name,
			SetID:      setID,
			SessionID:  sessionID,
			Status:     canvas.StatusQueue,
			Created:    now,
			FolderLink: canvas.DetectFolderLink(input.Content),
		},
	}
	prompt.Metadata.ID = prompt.ID

	e.doc.Prompts = append(e.doc.Prompts, prompt)
	if err := e.save(); err != nil {
		return canvas.Prompt{}, err
	}
	e.logInfo("prompt added", "id", prompt.ID, "set", prompt.Metadata.SetID)
	return prompt, nil
}

// UpdatePromptInput carries partial edits; nil fields are left alone.
type UpdatePromptInput struct {
	Name    *string
	Content *string
	Status  *canvas.Status
}

func (e *Editor) UpdatePrompt(id string, input UpdatePromptInput) (canvas.Prompt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.doc.PromptByID(id)
	if p == nil {
		return canvas.Prompt{}, ErrPromptNotFound
	}

	if input.Name != nil {
		p.Metadata.Name = *input.Name
	}
	if input.Content != nil {
		p.Content = *input.Content
		if p.Metadata.FolderLink == "" {
			p.Metadata.FolderLink = canvas.DetectFolderLink(*input.Content)
		}
	}
	if input.Status != nil {
		p.Metadata.Status = *input.Status
	}
	p.Metadata.Updated = canvas.Timestamp(e.codec.Now())

	if err := e.save(); err != nil {
		return canvas.Prompt{}, err
	}
	e.logInfo("prompt updated", "id", id)
	return *p, nil
}

// DeletePrompt moves a prompt to trash; deleting a trashed prompt removes
// it for good.
func (e *Editor) DeletePrompt(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i := range e.doc.Prompts {
		if e.doc.Prompts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrPromptNotFound
	}

	if e.doc.Prompts[idx].Metadata.Status == canvas.StatusTrash {
		e.doc.Prompts = slices.Delete(e.doc.Prompts, idx, idx+1)
		e.logInfo("prompt removed", "id", id)
	} else {
		e.doc.Prompts[idx].Metadata.Status = canvas.StatusTrash
		e.doc.Prompts[idx].Metadata.Updated = canvas.Timestamp(e.codec.Now())
		e.logInfo("prompt trashed", "id", id)
	}
	return e.save()
}

// MovePrompt reassigns a prompt to a set/session and places it at index
// within that grouping (clamped to the grouping's bounds).
func (e *Editor) MovePrompt(id, setID, sessionID string, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i := range e.doc.Prompts {
		if e.doc.Prompts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrPromptNotFound
	}

	if sessionID != "" {
		session := e.doc.SessionByID(sessionID)
		if session == nil {
			return ErrSessionNotFound
		}
		if setID == "" {
			setID = session.SetID
		} else if setID != session.SetID {
			return ErrSessionNotFound
		}
	}
	if setID != "" && e.doc.SetByID(setID) == nil {
		return ErrSetNotFound
	}

	p := e.doc.Prompts[idx]
	e.doc.Prompts = slices.Delete(e.doc.Prompts, idx, idx+1)
	p.Metadata.SetID = setID
	p.Metadata.SessionID = sessionID
	p.Metadata.Updated = canvas.Timestamp(e.codec.Now())

	if index < 0 {
		index = 0
	}
	insertAt := len(e.doc.Prompts)
	seen := 0
	for i := range e.doc.Prompts {
		q := &e.doc.Prompts[i]
		if q.Metadata.SetID != setID || q.Metadata.SessionID != sessionID {
			continue
		}
		if seen == index {
			insertAt = i
			break
		}
		seen++
	}
	e.doc.Prompts = slices.Insert(e.doc.Prompts, insertAt, p)

	if err := e.save(); err != nil {
		return err
	}
	e.logInfo("prompt moved", "id", id, "set", setID, "session", sessionID)
	return nil
}

func (e *Editor) CreateSet(name string) (canvas.Set, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	set := canvas.Set{
		ID:      e.codec.NewID(),
		Name:    name,
		Active:  len(e.doc.Sets) == 0,
		Created: canvas.Timestamp(e.codec.Now()),
	}
	e.doc.Sets = append(e.doc.Sets, set)
	if err := e.save(); err != nil {
		return canvas.Set{}, err
	}
	e.logInfo("set created", "id", set.ID, "name", name)
	return set, nil
}

func (e *Editor) RenameSet(id, name string) error {
	return e.withSet(id, func(s *canvas.Set) { s.Name = name })
}

func (e *Editor) SetSetCollapsed(id string, collapsed bool) error {
	return e.withSet(id, func(s *canvas.Set) { s.Collapsed = collapsed })
}

// ActivateSet makes one set active and all others inactive.
func (e *Editor) ActivateSet(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc.SetByID(id) == nil {
		return ErrSetNotFound
	}
	for i := range e.doc.Sets {
		e.doc.Sets[i].Active = e.doc.Sets[i].ID == id
	}
	if err := e.save(); err != nil {
		return err
	}
	e.logInfo("set activated", "id", id)
	return nil
}

// DeleteSet drops the set and its sessions; the set's prompts are trashed
// and fall back to the synthesized default set on the next write.
func (e *Editor) DeleteSet(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i := range e.doc.Sets {
		if e.doc.Sets[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrSetNotFound
	}
	wasActive := e.doc.Sets[idx].Active
	e.doc.Sets = slices.Delete(e.doc.Sets, idx, idx+1)

	e.doc.Sessions = slices.DeleteFunc(e.doc.Sessions, func(s canvas.Session) bool {
		return s.SetID == id
	})
	now := canvas.Timestamp(e.codec.Now())
	for i := range e.doc.Prompts {
		p := &e.doc.Prompts[i]
		if p.Metadata.SetID != id {
			continue
		}
		p.Metadata.SetID = ""
		p.Metadata.SessionID = ""
		p.Metadata.Status = canvas.StatusTrash
		p.Metadata.Updated = now
	}
	if wasActive && len(e.doc.Sets) > 0 {
		e.doc.Sets[0].Active = true
	}

	if err := e.save(); err != nil {
		return err
	}
	e.logInfo("set deleted", "id", id)
	return nil
}

func (e *Editor) AddSession(setID, name string) (canvas.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc.SetByID(setID) == nil {
		return canvas.Session{}, ErrSetNotFound
	}
	session := canvas.Session{
		ID:    e.codec.NewID(),
		Name:  name,
		SetID: setID,
	}
	e.doc.Sessions = append(e.doc.Sessions, session)
	if err := e.save(); err != nil {
		return canvas.Session{}, err
	}
	e.logInfo("session added", "id", session.ID, "set", setID)
	return session, nil
}

func (e *Editor) RenameSession(id, name string) error {
	return e.withSession(id, func(s *canvas.Session) { s.Name = name })
}

func (e *Editor) SetSessionCollapsed(id string, collapsed bool) error {
	return e.withSession(id, func(s *canvas.Session) { s.Collapsed = collapsed })
}

// LinkClaudeSession attaches an external session transcript to a prompt by
// opaque id; the canvas never interprets the value.
func (e *Editor) LinkClaudeSession(promptID, claudeSessionID string) error {
	return e.withPrompt(promptID, func(p *canvas.Prompt) {
		p.Metadata.ClaudeSessionID = claudeSessionID
	})
}

// RecordExecution stores the outcome of running a prompt externally.
func (e *Editor) RecordExecution(promptID, claudeMessageID, responsePreview string) error {
	return e.withPrompt(promptID, func(p *canvas.Prompt) {
		p.Metadata.ClaudeMessageID = claudeMessageID
		p.Metadata.ExecutedAt = canvas.Timestamp(e.codec.Now())
		p.Metadata.ResponsePreview = truncate(responsePreview, responsePreviewLimit)
		if p.Metadata.Status == canvas.StatusQueue {
			p.Metadata.Status = canvas.StatusActive
		}
	})
}

func (e *Editor) withSet(id string, mutate func(*canvas.Set)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.doc.SetByID(id)
	if s == nil {
		return ErrSetNotFound
	}
	mutate(s)
	return e.save()
}

func (e *Editor) withSession(id string, mutate func(*canvas.Session)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.doc.SessionByID(id)
	if s == nil {
		return ErrSessionNotFound
	}
	mutate(s)
	return e.save()
}

func (e *Editor) withPrompt(id string, mutate func(*canvas.Prompt)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.doc.PromptByID(id)
	if p == nil {
		return ErrPromptNotFound
	}
	mutate(p)
	p.Metadata.Updated = canvas.Timestamp(e.codec.Now())
	return e.save()
}

// truncate cuts on a rune boundary so the preview stays valid UTF-8.
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
