package stores

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/sheetflow/sheetflow/pkg/telemetry"
)

// EventSink returns a telemetry subscriber that appends published
// events to the store's event log. Persistence failures are logged and
// never propagate into the session.
func EventSink(store Store, logger zerolog.Logger) telemetry.EventSubscriber {
	logger = logger.With().Str("component", "event_sink").Logger()
	return func(ev telemetry.Event) {
		rec := &Event{
			Level:     eventLevel(ev.Level),
			Message:   ev.Message,
			Timestamp: ev.Timestamp,
		}
		if ev.SessionID != "" {
			sessionID := ev.SessionID
			rec.SessionID = &sessionID
		}
		if ev.ActionKind != "" {
			index := ev.ActionIndex
			rec.ActionIndex = &index
		}
		if details := eventDetails(ev); details != "" {
			rec.Details = &details
		}
		if err := store.AppendEvent(context.Background(), rec); err != nil {
			logger.Warn().Err(err).Str("type", ev.Type).Msg("failed to persist event")
		}
	}
}

// eventDetails serializes the event type plus any payload data into
// the details blob.
func eventDetails(ev telemetry.Event) string {
	details := map[string]interface{}{"type": ev.Type}
	if ev.ActionKind != "" {
		details["action_kind"] = ev.ActionKind
	}
	if ev.Sheet != "" {
		details["sheet"] = ev.Sheet
	}
	for k, v := range ev.Data {
		details[k] = v
	}
	data, err := json.Marshal(details)
	if err != nil {
		return ""
	}
	return string(data)
}

func eventLevel(level string) EventLevel {
	switch level {
	case telemetry.EventLevelWarning:
		return EventLevelWarning
	case telemetry.EventLevelError:
		return EventLevelError
	default:
		return EventLevelInfo
	}
}
