package middleware

import (
	apperrors "crewcall/pkg/errors"
	httputil "crewcall/pkg/http"
	"crewcall/pkg/logger"
	"net/http"
)

func reject(w http.ResponseWriter, log *logger.Logger, r *http.Request, appErr *apperrors.AppError, attrs ...any) {
	log.Warn(appErr.Message,
		append([]any{
			"request_id", RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		}, attrs...)...,
	)
	if err := httputil.WriteError(w, appErr); err != nil {
		log.Error("failed to write middleware rejection", "error", err)
	}
}
