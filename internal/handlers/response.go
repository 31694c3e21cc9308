package handlers

import (
	"io"
	"log/slog"
	"net/http"
)

// Response is what a handler asks to be written: one of JSON, Redirect,
// File or Empty.
type Response interface {
	write(w http.ResponseWriter, r *http.Request)
}

// JSON writes Body encoded as JSON with Status.
type JSON struct {
	Status int
	Body   any
}

func (j JSON) write(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, j.Status, j.Body)
}

// Redirect sends the client to Target, setting Cookies first.
type Redirect struct {
	Target  string
	Cookies []*http.Cookie
}

func (d Redirect) write(w http.ResponseWriter, r *http.Request) {
	for _, cookie := range d.Cookies {
		http.SetCookie(w, cookie)
	}
	http.Redirect(w, r, d.Target, http.StatusFound)
}

// File streams Content with ContentType and closes it.
type File struct {
	ContentType string
	Content     io.ReadCloser
}

func (f File) write(w http.ResponseWriter, r *http.Request) {
	defer f.Content.Close()
	if f.ContentType != "" {
		w.Header().Set("Content-Type", f.ContentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f.Content)
}

// Empty writes only a status line.
type Empty struct {
	Status int
}

func (e Empty) write(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(e.Status)
}

type handlerFunc func(r *http.Request) (Response, error)

// serve adapts fn to net/http. Errors are logged and answered with a
// generic 500 so store details never reach the client.
func serve(logger *slog.Logger, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := fn(r)
		if err != nil {
			logger.ErrorContext(r.Context(), "request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp.write(w, r)
	}
}
