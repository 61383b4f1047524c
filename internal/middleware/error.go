package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/famnudger/fam/backend/internal/logger"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// AbortWithError writes the error envelope and stops the gin chain.
func AbortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorDetail{Message: message, Code: code}})
}

// responseRecorder holds back error bodies so they can be re-encoded.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	if statusCode < 400 {
		r.ResponseWriter.WriteHeader(statusCode)
	}
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.statusCode >= 400 {
		return r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

// ErrorHandler wraps a plain net/http handler so error statuses and panics
// come back in the JSON error envelope.
func ErrorHandler(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			if err := recover(); err != nil {
				log.Error("handler panicked", "path", r.URL.Path, "error", err)
				writeEnvelope(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			if rec.statusCode >= 400 {
				writeEnvelope(w, rec.statusCode, strings.TrimSpace(rec.body.String()))
			}
		}()

		next.ServeHTTP(rec, r)
	})
}

func writeEnvelope(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorDetail{
		Message: message,
		Code:    strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_"),
	}})
}
