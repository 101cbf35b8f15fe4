package model

import (
	"math/big"
	"time"
)

// AuditKind names an operational event worth persisting.
type AuditKind string

const (
	AuditMigrationStarted   AuditKind = "migration_started"
	AuditMigrationSent      AuditKind = "migration_sent"
	AuditMigrationCompleted AuditKind = "migration_completed"
	AuditInboundDropped     AuditKind = "inbound_dropped"
	AuditInboundIgnored     AuditKind = "inbound_ignored"
	AuditForceUnlock        AuditKind = "force_unlock"
	AuditYieldAccrued       AuditKind = "yield_accrued"
	AuditEmergencyWithdraw  AuditKind = "emergency_withdraw"
)

// AuditEvent is an operational audit trail entry. Amount and ChainSelector are
// zero-valued when the event kind carries neither.
type AuditEvent struct {
	ID            string    `json:"id"`
	Kind          AuditKind `json:"kind"`
	At            time.Time `json:"at"`
	Account       string    `json:"account,omitempty"`
	Amount        *big.Int  `json:"amount,omitempty"`
	ChainSelector uint64    `json:"chain_selector,omitempty"`
	Detail        string    `json:"detail,omitempty"`
}
