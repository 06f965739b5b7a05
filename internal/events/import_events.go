package events

import (
	"time"

	"github.com/google/uuid"
)

type ImportEventType string

const (
	ImportStaged     ImportEventType = "import.staged"
	ImportRowUpdated ImportEventType = "import.row_updated"
	ImportRowDeleted ImportEventType = "import.row_deleted"
	ImportCommitted  ImportEventType = "import.committed"
	ImportCleared    ImportEventType = "import.cleared"
)

// ImportEvent describes one lifecycle transition of an import session. Rows
// carries the row count the transition touched (staged rows, committed
// products, cleared rows, or 1 for single-row mutations).
type ImportEvent struct {
	ID        string          `json:"id"`
	Type      ImportEventType `json:"type"`
	SessionID uuid.UUID       `json:"session_id"`
	Rows      int             `json:"rows"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
}

// NewImportEvent creates an event with generated id and current timestamp
func NewImportEvent(eventType ImportEventType, sessionID uuid.UUID, rows int) *ImportEvent {
	return &ImportEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Rows:      rows,
		Timestamp: time.Now().UTC(),
		Source:    "product-sales-service",
		Version:   "1.0",
	}
}
