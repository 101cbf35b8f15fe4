package vault

import (
	"math/big"
	"testing"
	"time"

	"yieldBridge/internal/model"
)

func readyInput() gateInput {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return gateInput{
		now: base.Add(2 * time.Hour),
		params: Params{
			LocalAPY:          5,
			RemoteAPY:         10,
			RebalanceInterval: time.Hour,
			LastRebalanced:    base,
		},
		state:       model.Idle,
		pool:        big.NewInt(100),
		heldBalance: big.NewInt(100),
		feeBalance:  big.NewInt(1),
	}
}

func TestCheckUpkeepReady(t *testing.T) {
	diag := checkUpkeep(readyInput())
	if !diag.Ready() {
		t.Fatalf("expected ready, blocked by %v", diag.Reasons())
	}
	if reasons := diag.Reasons(); len(reasons) != 0 {
		t.Fatalf("expected no reasons, got %v", reasons)
	}
}

func TestCheckUpkeepEachCondition(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*gateInput)
		reason string
	}{
		{
			"interval not elapsed",
			func(in *gateInput) { in.now = in.params.LastRebalanced.Add(time.Minute) },
			"rebalance interval not elapsed",
		},
		{
			"interval exactly equal is not elapsed",
			func(in *gateInput) { in.now = in.params.LastRebalanced.Add(in.params.RebalanceInterval) },
			"rebalance interval not elapsed",
		},
		{
			"remote apy equal",
			func(in *gateInput) { in.params.RemoteAPY = in.params.LocalAPY },
			"remote apy not higher than local",
		},
		{
			"remote apy lower",
			func(in *gateInput) { in.params.RemoteAPY = 1 },
			"remote apy not higher than local",
		},
		{
			"pool locked",
			func(in *gateInput) { in.state = model.Locked },
			"migration already in flight",
		},
		{
			"empty pool",
			func(in *gateInput) { in.pool = new(big.Int) },
			"pool is empty",
		},
		{
			"no fee balance",
			func(in *gateInput) { in.feeBalance = new(big.Int) },
			"no fee token balance",
		},
		{
			"held balance short",
			func(in *gateInput) { in.heldBalance = big.NewInt(99) },
			"held balance below principal",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := readyInput()
			tc.mutate(&in)
			diag := checkUpkeep(in)
			if diag.Ready() {
				t.Fatalf("expected not ready")
			}
			reasons := diag.Reasons()
			if len(reasons) != 1 || reasons[0] != tc.reason {
				t.Fatalf("reasons = %v, want [%s]", reasons, tc.reason)
			}
		})
	}
}
