package statusapi

import (
	"net/http"

	"github.com/go-chi/render"
)

type HttpErrResponse struct {
	Err            error  `json:"-"`
	HTTPStatusCode int    `json:"-"`
	ErrorText      string `json:"error"`
}

func (e *HttpErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func (s *Server) httpErrNotFound(err error) render.Renderer {
	return &HttpErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusNotFound,
		ErrorText:      "Not Found",
	}
}

func (s *Server) httpErrInvalidRequest(err error) render.Renderer {
	return &HttpErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		ErrorText:      "Invalid Request",
	}
}
