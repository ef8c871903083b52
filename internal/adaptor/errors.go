package adaptor

import (
	"encoding/json"
	"net/http"

	"finscope/pkg/apperror"
	"finscope/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// handleServiceError maps the error kind to a status. Internal details stay in the log.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)

	if status >= http.StatusInternalServerError {
		log.Error("Failed to "+operation, zap.Error(err), zap.String("kind", kind.String()))
	} else {
		log.Warn(operation+" failed", zap.Error(err), zap.String("kind", kind.String()))
	}

	utils.ResponseError(w, status, apperror.MessageOf(err), nil)
}

// decodeAndValidate reads a JSON body into dst and runs the struct validator.
// It writes the 400 response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}

	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}

func currentUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}
