package vault

import (
	"math/big"
	"time"

	"yieldBridge/internal/model"
)

// Diagnostics reports each automation precondition individually so a caller
// can see exactly which one blocks a migration instead of a single opaque
// boolean.
type Diagnostics struct {
	IntervalElapsed  bool
	RemoteAPYHigher  bool
	PoolIdle         bool
	HasPrincipal     bool
	HasFeeBalance    bool
	PrincipalCovered bool
}

// Ready is the conjunction of all six conditions.
func (d Diagnostics) Ready() bool {
	return d.IntervalElapsed && d.RemoteAPYHigher && d.PoolIdle &&
		d.HasPrincipal && d.HasFeeBalance && d.PrincipalCovered
}

// Reasons lists the failing conditions by name. Empty when ready.
func (d Diagnostics) Reasons() []string {
	var out []string
	if !d.IntervalElapsed {
		out = append(out, "rebalance interval not elapsed")
	}
	if !d.RemoteAPYHigher {
		out = append(out, "remote apy not higher than local")
	}
	if !d.PoolIdle {
		out = append(out, "migration already in flight")
	}
	if !d.HasPrincipal {
		out = append(out, "pool is empty")
	}
	if !d.HasFeeBalance {
		out = append(out, "no fee token balance")
	}
	if !d.PrincipalCovered {
		out = append(out, "held balance below principal")
	}
	return out
}

// gateInput is the observable state the gate decides over.
type gateInput struct {
	now         time.Time
	params      Params
	state       model.MigrationState
	pool        *big.Int
	heldBalance *big.Int
	feeBalance  *big.Int
}

// checkUpkeep is the stateless automation predicate: migration should fire
// iff every condition holds.
func checkUpkeep(in gateInput) Diagnostics {
	return Diagnostics{
		IntervalElapsed:  in.now.Sub(in.params.LastRebalanced) > in.params.RebalanceInterval,
		RemoteAPYHigher:  in.params.RemoteAPY > in.params.LocalAPY,
		PoolIdle:         in.state == model.Idle,
		HasPrincipal:     in.pool.Sign() > 0,
		HasFeeBalance:    in.feeBalance.Sign() > 0,
		PrincipalCovered: in.heldBalance.Cmp(in.pool) >= 0,
	}
}
