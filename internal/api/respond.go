// internal/api/respond.go
package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"idea-lab/internal/canvas"
	"idea-lab/internal/common/errors"
	"idea-lab/internal/common/genai"
	"idea-lab/internal/common/logger"
	"idea-lab/internal/common/validation"
	"idea-lab/internal/funding"
	"idea-lab/internal/ideagen"
	"idea-lab/internal/notify"
	"idea-lab/internal/repository"
	"idea-lab/internal/roadmap"
	"idea-lab/internal/search"
	"idea-lab/internal/session"
)

const maxBodyBytes = 1 << 20

var (
	errUnauthenticated = stderrors.New("UNAUTHENTICATED")
	errBadRequest      = stderrors.New("BAD_REQUEST")
	errUnavailable     = stderrors.New("UNAVAILABLE")
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body, validating it against schema when one is given.
func decode(r *http.Request, schema *validation.Schema, v interface{}) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}
	if schema != nil {
		if err := schema.Validate(raw); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// writeError maps domain errors onto a status and a StandardError body.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	status, stdErr := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", map[string]interface{}{
			"status": status,
			"code":   string(stdErr.Code),
			"error":  err,
		})
	}
	writeJSON(w, status, stdErr)
}

func classify(err error) (int, *errors.StandardError) {
	is := func(targets ...error) bool {
		for _, t := range targets {
			if stderrors.Is(err, t) {
				return true
			}
		}
		return false
	}

	switch {
	case is(errUnauthenticated):
		e := errors.NewValidationFailedError("missing " + userHeader + " header")
		e.Code = errors.ErrCodeUnauthenticated
		return http.StatusUnauthorized, e
	case is(errBadRequest, session.ErrUnknownTab, session.ErrInvalidInput, ideagen.ErrInvalidInput,
		roadmap.ErrStepOutOfRange, funding.ErrInvalidStatus, funding.ErrOutOfRange, notify.ErrInvalidRecipient):
		return http.StatusBadRequest, errors.NewValidationFailedError(err.Error())
	case is(session.ErrNoIdea, session.ErrNotLoaded, session.ErrStaleResult):
		e := errors.NewValidationFailedError(err.Error())
		e.Code = errors.ErrCodeSessionConflict
		return http.StatusConflict, e
	case is(repository.ErrNotFound, canvas.ErrNotFound, funding.ErrNotFound):
		e := errors.NewNotFoundError("resource", "")
		e.Details = err.Error()
		return http.StatusNotFound, e
	case is(genai.ErrGenerationTimeout):
		return http.StatusGatewayTimeout, errors.NewGenerationTimeoutError("request", err)
	case is(genai.ErrGenerationFailed):
		return http.StatusBadGateway, errors.NewGenerationFailedError("request", err)
	case is(ideagen.ErrInvalidPayload):
		return http.StatusBadGateway, errors.NewInvalidPayloadError(err)
	case is(repository.ErrBackendFailed):
		return http.StatusBadGateway, errors.NewBackendFailedError("persist", err)
	case is(search.ErrSearchFailed):
		return http.StatusBadGateway, errors.NewSearchFailedError(err)
	case is(notify.ErrSendFailed):
		return http.StatusBadGateway, errors.NewNotificationSendFailedError("email", err)
	case is(errUnavailable, notify.ErrDisabled):
		e := errors.NewValidationFailedError(err.Error())
		e.Code = errors.ErrCodeUnavailable
		return http.StatusServiceUnavailable, e
	}
	return http.StatusInternalServerError, errors.Normalize(err)
}
