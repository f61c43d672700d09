package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/pkg/errors"

	"github.com/bitbriks/bitbrik/products"
	"github.com/bitbriks/bitbrik/store"
)

type DocumentResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	State     json.RawMessage `json:"state,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func NewDocumentResponse(d store.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:        d.ID,
		Title:     d.Title,
		State:     d.State,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (*DocumentResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

type CreateDocumentRequest struct {
	Title string          `json:"title"`
	HTML  string          `json:"html"`
	State json.RawMessage `json:"state"`
}

func (req *CreateDocumentRequest) Bind(*http.Request) error {
	if req.HTML == "" && len(req.State) == 0 {
		return errors.New("html or state is required")
	}
	if req.HTML != "" && len(req.State) > 0 {
		return errors.New("html and state are exclusive")
	}
	return nil
}

type ImportRequest struct {
	HTML string `json:"html"`
}

func (req *ImportRequest) Bind(*http.Request) error {
	if req.HTML == "" {
		return errors.New("html is required")
	}
	return nil
}

type ImportResponse struct {
	State json.RawMessage `json:"state"`
}

func (*ImportResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

type ProductsRequest struct {
	Products products.Products `json:"products"`
}

func (req *ProductsRequest) Bind(*http.Request) error {
	if len(req.Products) == 0 {
		return errors.New("products are required")
	}
	return products.Validate(req.Products)
}

// ErrResponse is the JSON body of every failed request.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrUnprocessable(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Unprocessable document.",
		ErrorText:      err.Error(),
	}
}

var (
	ErrNotFound       = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}
	ErrInternalServer = &ErrResponse{HTTPStatusCode: http.StatusInternalServerError, StatusText: "Internal server error."}
)

func (s *Server) render(w http.ResponseWriter, r *http.Request, rnd render.Renderer) {
	if err := render.Render(w, r, rnd); err != nil {
		s.logger.Warn().Err(err).Msg("failed to render")
	}
}

func (s *Server) renderList(w http.ResponseWriter, r *http.Request, l []render.Renderer) {
	if err := render.RenderList(w, r, l); err != nil {
		s.logger.Warn().Err(err).Msg("failed to render")
	}
}
