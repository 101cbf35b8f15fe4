package storage

import "yieldBridge/internal/model"

// AuditSink is a sink for operational audit events.
type AuditSink interface {
	PutAuditBatch(events []model.AuditEvent) error
}
