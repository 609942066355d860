package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/angelmondragon/shophub/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// Caller supplied ids are echoed only when they are short and log safe.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// RequestID echoes a usable caller id or mints a ULID, then tags the request logger with it.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if !requestIDPattern.MatchString(reqID) {
				reqID = ulid.Make().String()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
