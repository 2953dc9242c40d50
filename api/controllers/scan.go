package controllers

import (
	"net/http"

	"github.com/gsatlink/pos-backend/api/responses"
	"github.com/gsatlink/pos-backend/api/validators"
	"github.com/gsatlink/pos-backend/internal/scan"
	"github.com/gsatlink/pos-backend/pkg/logger"
)

type scanIngestRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Raw       string `json:"raw" validate:"required"`
	Source    string `json:"source,omitempty"`
}

// ScanIngest accepts a scan from a device feed and queues it on the stream.
// Results surface through the session state, not this response; a full buffer
// drops the event and reports accepted=false.
func ScanIngest(stream *scan.Stream, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload scanIngestRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		source := scan.Source(payload.Source)
		if source == "" {
			source = scan.SourceBarcode
		}

		accepted := stream.Publish(scan.Event{
			Raw:       payload.Raw,
			Source:    source,
			SessionID: payload.SessionID,
		})

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]bool{"accepted": accepted})
	}
}
