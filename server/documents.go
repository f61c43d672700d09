package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pkg/errors"

	"github.com/bitbriks/bitbrik"
	"github.com/bitbriks/bitbrik/store"
)

// open builds a headless editor over a saved state or imported HTML. The
// caller closes it.
func (s *Server) open(state []byte, html string) (*bitbrik.Editor, error) {
	return bitbrik.New(bitbrik.Config{
		Namespace:   "server",
		InitialJSON: state,
		InitialHTML: html,
		Settings:    bitbrik.Settings{EmptyEditor: true},
		Sanitize:    s.sanitize,
		Logger:      s.logger,
	})
}

// load fetches the document named by the route, rendering the failure when
// it cannot.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (store.Document, bool) {
	id := chi.URLParam(r, "id")
	d, err := s.docs.Get(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.render(w, r, ErrNotFound)
		return store.Document{}, false
	case err != nil:
		s.logger.Error().Err(err).Str("id", id).Msg("error loading document")
		s.render(w, r, ErrInternalServer)
		return store.Document{}, false
	}
	return d, true
}

// openSaved loads the route's document into an editor.
func (s *Server) openSaved(w http.ResponseWriter, r *http.Request) (store.Document, *bitbrik.Editor, bool) {
	d, ok := s.load(w, r)
	if !ok {
		return d, nil, false
	}
	e, err := s.open(d.State, "")
	if err != nil {
		s.logger.Error().Err(err).Str("id", d.ID).Msg("stored state does not load")
		s.render(w, r, ErrInternalServer)
		return d, nil, false
	}
	return d, e, true
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("error listing documents")
		s.render(w, r, ErrInternalServer)
		return
	}
	list := make([]render.Renderer, 0, len(docs))
	for _, d := range docs {
		list = append(list, NewDocumentResponse(d))
	}
	s.renderList(w, r, list)
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	req := &CreateDocumentRequest{}
	if err := render.Bind(r, req); err != nil {
		s.render(w, r, ErrInvalidRequest(err))
		return
	}
	e, err := s.open(req.State, req.HTML)
	if err != nil {
		s.render(w, r, ErrUnprocessable(err))
		return
	}
	defer e.Close()
	s.save(w, r, store.Document{Title: req.Title}, e, http.StatusCreated)
}

// save stores the editor's state under d and renders the result.
func (s *Server) save(w http.ResponseWriter, r *http.Request, d store.Document, e *bitbrik.Editor, status int) {
	state, err := e.ExportJSON().Await(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("error exporting state")
		s.render(w, r, ErrInternalServer)
		return
	}
	d.State = state
	saved, err := s.docs.Save(r.Context(), d)
	if err != nil {
		s.logger.Error().Err(err).Str("id", d.ID).Msg("error saving document")
		s.render(w, r, ErrInternalServer)
		return
	}
	render.Status(r, status)
	s.render(w, r, NewDocumentResponse(saved))
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	d, ok := s.load(w, r)
	if !ok {
		return
	}
	s.render(w, r, NewDocumentResponse(d))
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.docs.Delete(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.render(w, r, ErrNotFound)
	case err != nil:
		s.logger.Error().Err(err).Str("id", id).Msg("error deleting document")
		s.render(w, r, ErrInternalServer)
	default:
		render.NoContent(w, r)
	}
}

func (s *Server) documentHTML(w http.ResponseWriter, r *http.Request) {
	_, e, ok := s.openSaved(w, r)
	if !ok {
		return
	}
	defer e.Close()
	markup, err := e.ExportHTML().Await(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("error exporting html")
		s.render(w, r, ErrInternalServer)
		return
	}
	render.HTML(w, r, markup)
}

func (s *Server) documentMarkdown(w http.ResponseWriter, r *http.Request) {
	_, e, ok := s.openSaved(w, r)
	if !ok {
		return
	}
	defer e.Close()
	md, err := e.ExportMarkdown().Await(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("error exporting markdown")
		s.render(w, r, ErrInternalServer)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if _, err := w.Write([]byte(md)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write markdown")
	}
}

// insertProducts appends a products embed to the end of the document.
func (s *Server) insertProducts(w http.ResponseWriter, r *http.Request) {
	req := &ProductsRequest{}
	if err := render.Bind(r, req); err != nil {
		s.render(w, r, ErrInvalidRequest(err))
		return
	}
	d, e, ok := s.openSaved(w, r)
	if !ok {
		return
	}
	defer e.Close()
	if err := e.InsertProducts(req.Products); err != nil {
		s.render(w, r, ErrUnprocessable(err))
		return
	}
	s.save(w, r, d, e, http.StatusOK)
}

// importHTML converts HTML to a serialized state without storing it.
func (s *Server) importHTML(w http.ResponseWriter, r *http.Request) {
	req := &ImportRequest{}
	if err := render.Bind(r, req); err != nil {
		s.render(w, r, ErrInvalidRequest(err))
		return
	}
	e, err := s.open(nil, req.HTML)
	if err != nil {
		s.render(w, r, ErrUnprocessable(err))
		return
	}
	defer e.Close()
	state, err := e.ExportJSON().Await(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("error exporting state")
		s.render(w, r, ErrInternalServer)
		return
	}
	s.render(w, r, &ImportResponse{State: state})
}
