package model

// MigrationState is the pool-wide migration lock state.
type MigrationState uint8

const (
	// Idle means no migration is in flight; deposits and withdrawals are open.
	Idle MigrationState = iota
	// Locked means principal has been handed to the transport and the pool is
	// closed until an authorized inbound credit arrives.
	Locked
)

func (s MigrationState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Locked:
		return "locked"
	default:
		return "unknown"
	}
}
