package middleware

import (
	"net/http"
	"runtime/debug"

	"mc-bridge-api/pkg/apierror"

	"github.com/sirupsen/logrus"
)

// Recovery is a middleware that recovers from panics.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logrus.WithFields(logrus.Fields{
					"panic": err,
					"stack": string(debug.Stack()),
				}).Error("panic recovered")

				writeError(w, apierror.InternalError("Internal server error"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
