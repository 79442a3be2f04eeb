package simple

import (
	"mime/multipart"
	"slices"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/dmitrymomot/requestmapper/core/handler"
	"github.com/dmitrymomot/requestmapper/core/mapper"
	"github.com/dmitrymomot/requestmapper/core/response"
)

type Note struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Body        string       `json:"body,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

type Attachment struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Caption  string `json:"caption,omitempty"`
}

type NoteList struct {
	Notes []Note `json:"notes"`
	Total int    `json:"total"`
}

type ListNotesQuery struct {
	Tags  []string `query:"tag"`
	Limit int      `query:"limit" default:"20" validate:"between:1,100"`
}

type CreateNoteRequest struct {
	Title string   `json:"title" validate:"required;min:1;max:120"`
	Body  string   `json:"body" validate:"max:10000"`
	Tags  []string `json:"tags"`
}

type AttachmentForm struct {
	File    *multipart.FileHeader `form:"file"`
	Caption string                `form:"caption" validate:"max:200"`
}

var (
	ErrNoteNotFound = response.ErrNotFound.WithMessage("note not found")
	ErrFileRequired = response.ErrBadRequest.WithMessage("file is required")
)

// NoteStore keeps notes in memory.
type NoteStore struct {
	mu    sync.RWMutex
	notes []Note
}

func NewNoteStore() *NoteStore {
	return &NoteStore{}
}

func (s *NoteStore) Add(n Note) Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = time.Now().UTC()
	s.notes = append(s.notes, n)
	return n
}

func (s *NoteStore) Get(id uuid.UUID) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notes {
		if n.ID == id {
			return n, true
		}
	}
	return Note{}, false
}

func (s *NoteStore) List(tags []string, limit int) NoteList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := NoteList{Notes: []Note{}}
	for _, n := range s.notes {
		if !hasTags(n, tags) {
			continue
		}
		out.Total++
		if len(out.Notes) < limit {
			out.Notes = append(out.Notes, n)
		}
	}
	return out
}

func (s *NoteStore) Attach(id uuid.UUID, a Attachment) (Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes[i].Attachments = append(s.notes[i].Attachments, a)
			return s.notes[i], true
		}
	}
	return Note{}, false
}

func hasTags(n Note, tags []string) bool {
	for _, t := range tags {
		if !slices.Contains(n.Tags, t) {
			return false
		}
	}
	return true
}

func (a *App) home(ctx *Context) handler.Response {
	return response.Templ(templ.Raw("<h1>" + templ.EscapeString(a.config.AppName) + "</h1>"))
}

func (a *App) listNotes(ctx *Context, q mapper.Query[ListNotesQuery]) (any, error) {
	return a.notes.List(q.Value.Tags, q.Value.Limit), nil
}

func (a *App) createNote(ctx *Context, req mapper.Body[CreateNoteRequest]) (any, error) {
	if !req.Bound() {
		return nil, response.ErrBadRequest.WithMessage("request body is required")
	}
	n := a.notes.Add(Note{Title: req.Value.Title, Body: req.Value.Body, Tags: req.Value.Tags})
	ctx.Logger().InfoContext(ctx, "note created", "note_id", n.ID)
	return n, nil
}

func (a *App) getNote(ctx *Context) (any, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return nil, ErrNoteNotFound
	}
	n, ok := a.notes.Get(id)
	if !ok {
		return nil, ErrNoteNotFound
	}
	return n, nil
}

func (a *App) attach(ctx *Context, f mapper.Form[AttachmentForm]) (any, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return nil, ErrNoteNotFound
	}
	if !f.Bound() || f.Value.File == nil {
		return nil, ErrFileRequired
	}
	n, ok := a.notes.Attach(id, Attachment{
		Filename: f.Value.File.Filename,
		Size:     f.Value.File.Size,
		Caption:  f.Value.Caption,
	})
	if !ok {
		return nil, ErrNoteNotFound
	}
	return n, nil
}
