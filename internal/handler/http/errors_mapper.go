package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-otp-keeper/internal/access"
	"github.com/MKhiriev/go-otp-keeper/internal/app"
	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/internal/service"
	"github.com/MKhiriev/go-otp-keeper/internal/store"
	"github.com/MKhiriev/go-otp-keeper/internal/utils"
	"github.com/MKhiriev/go-otp-keeper/internal/validators"
	"github.com/MKhiriev/go-otp-keeper/models"
)

type errorStatus struct {
	target error
	status int
	// message replaces err.Error() in the response when set
	message string
}

// errorStatuses is checked in order. A share refusal also matches
// access.ErrAccessDenied, so its specific reasons come first.
var errorStatuses = []errorStatus{
	{access.ErrAlreadyShared, http.StatusConflict, access.ErrAlreadyShared.Error()},
	{access.ErrShareTargetIsOwner, http.StatusBadRequest, access.ErrShareTargetIsOwner.Error()},
	{access.ErrShareTargetIsAdmin, http.StatusBadRequest, access.ErrShareTargetIsAdmin.Error()},
	{access.ErrAccessDenied, http.StatusNotFound, app.MsgAccountNotAvailable},
	{store.ErrAccountNotFound, http.StatusNotFound, app.MsgAccountNotAvailable},
	{service.ErrShareTargetNotFound, http.StatusNotFound, service.ErrShareTargetNotFound.Error()},
	{store.ErrShareNotFound, http.StatusNotFound, store.ErrShareNotFound.Error()},

	{ErrInvalidJSON, http.StatusBadRequest, ErrInvalidJSON.Error()},
	{ErrInvalidPathParameter, http.StatusBadRequest, ""},
	{validators.ErrInvalidInput, http.StatusBadRequest, validators.ErrInvalidInput.Error()},
	{service.ErrInvalidDataProvided, http.StatusBadRequest, ""},
	{service.ErrInvalidTOTPSecret, http.StatusBadRequest, ""},
	{service.ErrInvalidOTPAuthURI, http.StatusBadRequest, ""},
	{service.ErrUnsupportedParameter, http.StatusBadRequest, ""},
	{service.ErrCannotDeleteSelf, http.StatusBadRequest, service.ErrCannotDeleteSelf.Error()},

	{service.ErrWrongPassword, http.StatusUnauthorized, app.MsgInvalidLoginPassword},
	{service.ErrTokenIsExpiredOrInvalid, http.StatusUnauthorized, app.MsgTokenIsExpiredOrInvalid},
	{ErrEmptyAuthorizationHeader, http.StatusUnauthorized, ""},
	{utils.ErrInvalidAuthorizationHeader, http.StatusUnauthorized, ""},
	{service.ErrAdminOnly, http.StatusForbidden, service.ErrAdminOnly.Error()},
	{ErrForbidden, http.StatusForbidden, app.MsgForbidden},

	{service.ErrUserNotFound, http.StatusNotFound, service.ErrUserNotFound.Error()},
	{store.ErrLoginAlreadyExists, http.StatusConflict, app.MsgLoginAlreadyExists},
}

func statusFromError(err error) (int, string) {
	for _, es := range errorStatuses {
		if errors.Is(err, es.target) {
			if es.message == "" {
				return es.status, err.Error()
			}
			return es.status, es.message
		}
	}
	return http.StatusInternalServerError, app.MsgInternalServerError
}

// writeError logs err with the request logger and answers with the mapped
// status. Validation failures carry their per-field messages.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)

	status, message := statusFromError(err)
	body := models.ErrorResponse{Error: message}

	var fields validators.ValidationError
	if errors.As(err, &fields) {
		body.Fields = fields.Fields()
	}

	if status >= http.StatusInternalServerError {
		log.Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request rejected")
	}

	utils.WriteJSON(w, body, status)
}
