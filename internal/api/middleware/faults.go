package middleware

import (
	"net/http"
	"time"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/fault"
)

// FaultInjection returns a middleware that realizes active latency and
// error faults in the request path. It is mounted on the business routes
// only: the health, metrics, and chaos surfaces stay reachable so the
// instance can always be observed and restored.
//
// Latency applies before the error check, so a delayed-and-failing service
// is slow first and then fails, matching how a genuinely overloaded
// instance behaves.
func FaultInjection(reg *fault.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if delay := reg.ResponseDelay(); delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-r.Context().Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}

			if errType, active := reg.InjectedError(); active {
				writeInjectedError(w, r, errType)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeInjectedError emits a failure indistinguishable from a real one:
// timeout faults answer 504, everything else answers 500.
func writeInjectedError(w http.ResponseWriter, r *http.Request, errType string) {
	traceID := GetRequestID(r.Context())

	var problem *models.Problem
	switch errType {
	case fault.ErrorTypeTimeout:
		problem = models.NewGatewayTimeout(traceID, "upstream request timed out")
	default:
		problem = models.NewInternalError(traceID, "an unexpected error occurred")
	}
	problem.Instance = r.URL.Path
	problem.Write(w)
}
