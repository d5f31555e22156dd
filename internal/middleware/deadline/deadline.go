package deadline

import (
	"net/http"
	"time"
)

// New sets the connection read and write deadlines of every request to d,
// or to long for requests whose path is one of longPaths. It must run before
// any middleware that wraps the ResponseWriter.
func New(d, long time.Duration, longPaths ...string) func(http.Handler) http.Handler {
	slow := make(map[string]struct{}, len(longPaths))
	for _, p := range longPaths {
		slow[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timeout := d
			if _, ok := slow[r.URL.Path]; ok {
				timeout = long
			}

			if timeout > 0 {
				at := time.Now().Add(timeout)
				rc := http.NewResponseController(w)
				// * recorders and hijacked writers do not support deadlines
				_ = rc.SetReadDeadline(at)
				_ = rc.SetWriteDeadline(at)
			}

			next.ServeHTTP(w, r)
		})
	}
}
