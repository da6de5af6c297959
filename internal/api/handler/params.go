package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/musyaffa-iman/EchoShift/internal/api/apierr"
)

// pathUUID parses the named path variable as a UUID
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, apierr.NewInvalidRequestError("Invalid " + name + ": must be a UUID")
	}
	return id, nil
}
