package basket

import (
	"context"

	"github.com/gsatlink/pos-backend/internal/catalog"
	"github.com/gsatlink/pos-backend/pkg/db/models"
	"github.com/gsatlink/pos-backend/pkg/logger"
)

// LogCue emits the match confirmation as a structured log line. The counter
// UI tails these to play the audible confirmation; a hardware beeper would
// implement CueSink directly.
type LogCue struct {
	logg *logger.Logger
}

func NewLogCue(logg *logger.Logger) *LogCue {
	return &LogCue{logg: logg}
}

func (c *LogCue) Matched(ctx context.Context, sessionID string, item models.CatalogItem, outcome catalog.Outcome) {
	if c == nil || c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"session_id": sessionID,
		"item_id":    item.ID,
		"item_name":  item.Name,
		"outcome":    string(outcome),
	})
	c.logg.Info(ctx, "scan.cue")
}
