package middleware

import (
	"log/slog"
	"net/http"

	"github.com/musyaffa-iman/EchoShift/internal/api/apierr"
	"github.com/musyaffa-iman/EchoShift/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Panics are answered with a 500 envelope.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
