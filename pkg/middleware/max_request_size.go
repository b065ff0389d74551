package middleware

import (
	apperrors "crewcall/pkg/errors"
	"crewcall/pkg/logger"
	"net/http"
)

// MaxRequestSize rejects declared oversize bodies with 413 and caps the rest
// with http.MaxBytesReader, so JSON decoding fails once the limit is crossed.
func MaxRequestSize(maxBytes int64, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				appErr := apperrors.New(apperrors.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge)
				reject(w, log, r, appErr, "content_length", r.ContentLength, "max_bytes", maxBytes)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
