package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nextchamp/nextchamp/internal/services/contest/storage"
)

// AppendTelemetryEvent records one operational observation for later audits.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	attributes := []byte("{}")
	if len(evt.Attributes) > 0 {
		encoded, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("encode telemetry attributes: %w", err)
		}
		attributes = encoded
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO telemetry_events (timestamp, event_name, severity, contest_id, session_id, email, attributes_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		toMillis(evt.Timestamp), evt.EventName, evt.Severity,
		evt.ContestID, evt.SessionID, evt.Email, string(attributes),
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}
