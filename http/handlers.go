// server/http/handlers.go
package http

import (
	"bytes"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/vinizap/notas/server/domain"
	"github.com/vinizap/notas/server/store"
)

const deletedMessage = "Nota deletada"

type Server struct {
	notes store.Repository
	log   zerolog.Logger
}

func NewServer(notes store.Repository, log zerolog.Logger) *Server {
	return &Server{notes: notes, log: log}
}

type listResponse struct {
	Notes []domain.Note `json:"Notas"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// noteRequest distinguishes an absent (or null) key from an empty value.
type noteRequest struct {
	ID    *int64  `json:"id"`
	Title *string `json:"titulo"`
	Body  *string `json:"texto"`
}

func decodeRequest(c *fiber.Ctx) (*noteRequest, error) {
	raw := c.Body()
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, domain.Malformed("request body is empty")
	}
	if !utf8.Valid(raw) {
		return nil, domain.Malformed("request body is not valid UTF-8")
	}
	req := &noteRequest{}
	if err := json.Unmarshal(raw, req); err != nil {
		return nil, domain.Malformed("invalid JSON body: %v", err)
	}
	return req, nil
}

func (r *noteRequest) id() (int64, error) {
	if r.ID == nil {
		return 0, domain.Malformed(`missing "id"`)
	}
	return *r.ID, nil
}

func (r *noteRequest) content() (string, string, error) {
	if r.Title == nil {
		return "", "", domain.Malformed(`missing "titulo"`)
	}
	if r.Body == nil {
		return "", "", domain.Malformed(`missing "texto"`)
	}
	if err := domain.ValidateNote(*r.Title, *r.Body); err != nil {
		return "", "", err
	}
	return *r.Title, *r.Body, nil
}

func (s *Server) HandleListNotes(c *fiber.Ctx) error {
	notes, err := s.notes.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(listResponse{Notes: notes})
}

func (s *Server) HandleCreateNote(c *fiber.Ctx) error {
	req, err := decodeRequest(c)
	if err != nil {
		return err
	}
	title, body, err := req.content()
	if err != nil {
		return err
	}

	note, err := s.notes.Insert(c.UserContext(), title, body)
	if err != nil {
		return err
	}

	s.log.Debug().Int64("id", note.ID).Msg("note created")
	return c.JSON(note)
}

func (s *Server) HandleUpdateNote(c *fiber.Ctx) error {
	req, err := decodeRequest(c)
	if err != nil {
		return err
	}
	id, err := req.id()
	if err != nil {
		return err
	}
	title, body, err := req.content()
	if err != nil {
		return err
	}

	note, err := s.lookup(c, id)
	if err != nil {
		return err
	}
	if err := s.notes.Update(c.UserContext(), note, title, body); err != nil {
		return err
	}

	s.log.Debug().Int64("id", note.ID).Msg("note updated")
	return c.JSON(note)
}

func (s *Server) HandleDeleteNote(c *fiber.Ctx) error {
	req, err := decodeRequest(c)
	if err != nil {
		return err
	}
	id, err := req.id()
	if err != nil {
		return err
	}

	note, err := s.lookup(c, id)
	if err != nil {
		return err
	}
	if err := s.notes.Delete(c.UserContext(), note); err != nil {
		return err
	}

	s.log.Debug().Int64("id", note.ID).Msg("note deleted")
	return c.JSON(messageResponse{Message: deletedMessage})
}

func (s *Server) lookup(c *fiber.Ctx, id int64) (*domain.Note, error) {
	note, err := s.notes.Get(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, domain.ErrNotFound
	}
	return note, nil
}
