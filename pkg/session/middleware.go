package session

import (
	"net/http"
	"sync"

	"github.com/dmitrymomot/webauth/pkg/logger"
)

// Middleware loads the session into the request context and commits it
// right before the first byte of the response, or after the handler
// returns if it wrote nothing.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Load(r)

		cw := &commitWriter{ResponseWriter: w}
		cw.commit = func() {
			if err := m.Commit(w, s); err != nil {
				m.logger.ErrorContext(r.Context(), "failed to commit session", logger.Error(err))
			}
		}

		next.ServeHTTP(cw, r.WithContext(WithSession(r.Context(), s)))
		cw.once.Do(cw.commit)
	})
}

// commitWriter runs commit once, before headers are written.
type commitWriter struct {
	http.ResponseWriter
	commit func()
	once   sync.Once
}

func (w *commitWriter) WriteHeader(code int) {
	w.once.Do(w.commit)
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.once.Do(w.commit)
	return w.ResponseWriter.Write(b)
}

func (w *commitWriter) Flush() {
	w.once.Do(w.commit)
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *commitWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
