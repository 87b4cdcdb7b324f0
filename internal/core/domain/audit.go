package domain

import "time"

// AuditEntry records who changed what. Detail carries a JSON payload.
type AuditEntry struct {
	Entity   string    `json:"entity"`
	EntityID string    `json:"entity_id"`
	Action   string    `json:"action"`
	Detail   string    `json:"detail"`
	Actor    string    `json:"actor"`
	At       time.Time `json:"at"`
}
