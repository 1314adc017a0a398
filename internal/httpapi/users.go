package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/goliatone/go-cacheable/internal/users"
)

// errorResponse is the body of every non 2xx response.
type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func (rt *Router) listUsers(w http.ResponseWriter, r *http.Request) {
	records, err := rt.users.FindAll(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []*users.User{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (rt *Router) getUser(w http.ResponseWriter, r *http.Request) {
	record, err := rt.users.FindOne(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) createUser(w http.ResponseWriter, r *http.Request) {
	var req users.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}

	record, err := rt.users.Create(r.Context(), req)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (rt *Router) updateUser(w http.ResponseWriter, r *http.Request) {
	var req users.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}

	record, err := rt.users.Update(r.Context(), chi.URLParam(r, "userID"), req)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := rt.users.Remove(r.Context(), chi.URLParam(r, "userID")); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Mark(errors.Wrap(err, "malformed request body"), users.ErrInvalidInput)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, users.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: http.StatusText(status)}

	switch status {
	case http.StatusInternalServerError:
		rt.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	case http.StatusBadRequest:
		resp.Error = err.Error()
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			resp.Error = "validation failed"
			resp.Details = make(map[string]string, len(verrs))
			for field, ferr := range verrs {
				resp.Details[field] = ferr.Error()
			}
		}
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
