package pkgrouter

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
)

// middlewareRecoverer turns a handler panic into a 500 envelope and prints the
// internal frames of the stack to stderr.
//
//nolint:contextcheck // request context is used as is
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				//nolint:err113,errorlint // this must compare directly
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				slog.ErrorContext(r.Context(), "panic on the server",
					"method", r.Method,
					"path", r.URL.Path,
					"because", rvr,
				)

				printStackTrace(strings.Split(string(debug.Stack()), "\n"))

				writeJSON(w, errorResponse{Message: "internal server error"}, http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func printStackTrace(lines []string) {
	fmt.Fprintln(os.Stderr, "===== ===== START ===== =====")
	for _, line := range lines {
		if frame, ok := internalFrame(strings.TrimSpace(line)); ok {
			fmt.Fprintln(os.Stderr, "stack trace: ", frame)
		}
	}
	fmt.Fprintln(os.Stderr, "===== ===== END ===== =====")
}

// internalFrame shortens a "path/internal/x.go:12 +0x1f" stack line to
// "internal/x.go:12". Frames outside internal/ are skipped.
func internalFrame(line string) (string, bool) {
	idx := strings.Index(line, ".go:")
	if idx == -1 {
		return "", false
	}

	end := strings.IndexByte(line[idx:], ' ')
	if end == -1 {
		end = len(line)
	} else {
		end += idx
	}

	path := line[:end]
	start := strings.Index(path, "/internal/")
	if start == -1 {
		return "", false
	}

	return path[start+1:], true
}
