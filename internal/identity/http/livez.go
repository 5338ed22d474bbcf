package http

import (
	"net/http"
	"time"

	"github.com/venturemesh/identity/pkg/httpx"
	"github.com/venturemesh/identity/pkg/identitysdk"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning basic service health status, uptime and version. Always 200 while the process is running.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	identitysdk.HealthResponse
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := identitysdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}
