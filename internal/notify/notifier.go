package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/asterview/asterview/internal/types"
)

// ReportCompleted is the payload published after every finished report.
type ReportCompleted struct {
	ReportID  string             `json:"reportId"`
	Queues    []string           `json:"queues"`
	Start     time.Time          `json:"start"`
	End       time.Time          `json:"end"`
	Summary   types.StatsSummary `json:"summary"`
	Generated time.Time          `json:"generated"`
}

// Notifier publishes report-completed events. A nil publisher disables it.
type Notifier struct {
	publisher Publisher
	topic     string
	logger    zerolog.Logger
}

// NewNotifier creates a Notifier over the given publisher.
func NewNotifier(publisher Publisher, topic string, logger zerolog.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		topic:     topic,
		logger:    logger.With().Str("component", "notify").Logger(),
	}
}

// ReportDone publishes a completion event and returns the report id.
// Publish failures are logged, not propagated: the report itself already
// succeeded.
func (n *Notifier) ReportDone(ctx context.Context, queues []string, start, end time.Time, summary types.StatsSummary) string {
	id := uuid.NewString()
	if n == nil || n.publisher == nil {
		return id
	}

	payload, err := json.Marshal(ReportCompleted{
		ReportID:  id,
		Queues:    queues,
		Start:     start,
		End:       end,
		Summary:   summary,
		Generated: time.Now().UTC(),
	})
	if err != nil {
		n.logger.Error().Err(err).Msg("failed to marshal report notification")
		return id
	}

	if err := n.publisher.Publish(ctx, n.topic, payload); err != nil {
		n.logger.Error().Err(err).Str("topic", n.topic).Msg("failed to publish report notification")
		return id
	}
	n.logger.Debug().Str("report_id", id).Str("topic", n.topic).Msg("report notification published")
	return id
}
