package vault

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"yieldBridge/internal/model"
)

func TestLedgerConservation(t *testing.T) {
	l := NewLedger()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	a := common.HexToAddress("0x0000000000000000000000000000000000000001")
	b := common.HexToAddress("0x0000000000000000000000000000000000000002")

	steps := []struct {
		addr     common.Address
		amount   int64
		withdraw bool
	}{
		{a, 100, false},
		{b, 250, false},
		{a, 40, true},
		{b, 250, true},
		{a, 7, false},
	}

	for _, step := range steps {
		if step.withdraw {
			l.RecordWithdraw(step.addr, big.NewInt(step.amount), now)
		} else {
			l.RecordDeposit(step.addr, big.NewInt(step.amount), now)
		}
		now = now.Add(time.Minute)
	}

	sum := new(big.Int)
	for _, addr := range []common.Address{a, b} {
		net := new(big.Int).Neg(l.Profit(addr))
		sum.Add(sum, net)
	}
	if l.TotalDeposited().Cmp(sum) != 0 {
		t.Fatalf("pool %s != sum of net deposits %s", l.TotalDeposited(), sum)
	}
	if got := l.TotalDeposited().Int64(); got != 67 {
		t.Fatalf("pool = %d, want 67", got)
	}
}

func TestLedgerYieldCreditSkipsPool(t *testing.T) {
	l := NewLedger()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	a := common.HexToAddress("0x0000000000000000000000000000000000000001")

	l.RecordDeposit(a, big.NewInt(100), now)
	l.CreditYield(a, big.NewInt(30), now)

	if got := l.TotalDeposited().Int64(); got != 100 {
		t.Fatalf("pool = %d, want 100 (yield credit must not raise principal)", got)
	}
	if got := l.BalanceOf(a).Int64(); got != 130 {
		t.Fatalf("balance = %d, want 130", got)
	}
}

func TestLedgerProfitSign(t *testing.T) {
	l := NewLedger()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	a := common.HexToAddress("0x0000000000000000000000000000000000000001")

	l.RecordDeposit(a, big.NewInt(100), now)
	if got := l.Profit(a).Int64(); got != -100 {
		t.Fatalf("profit = %d, want -100 before withdrawal", got)
	}

	l.RecordWithdraw(a, big.NewInt(100), now)
	l.CreditYield(a, big.NewInt(5), now)
	l.RecordWithdraw(a, big.NewInt(5), now)
	if got := l.Profit(a).Int64(); got != 5 {
		t.Fatalf("profit = %d, want 5 after withdrawing principal plus yield", got)
	}
}

func TestLedgerHistoryAppendOnly(t *testing.T) {
	l := NewLedger()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	a := common.HexToAddress("0x0000000000000000000000000000000000000001")

	l.RecordDeposit(a, big.NewInt(100), base)
	l.CreditYield(a, big.NewInt(10), base.Add(time.Minute))
	l.RecordWithdraw(a, big.NewInt(50), base.Add(2*time.Minute))

	history := l.History(a)
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}

	want := []struct {
		kind   model.TxKind
		origin model.TxOrigin
		amount int64
	}{
		{model.TxDeposit, model.OriginLocal, 100},
		{model.TxYieldCredit, model.OriginCrossChain, 10},
		{model.TxWithdraw, model.OriginLocal, 50},
	}
	for i, w := range want {
		got := history[i]
		if got.Kind != w.kind || got.Origin != w.origin || got.Amount.Int64() != w.amount {
			t.Fatalf("history[%d] = %+v, want %+v", i, got, w)
		}
	}

	// Mutating the returned slice must not affect the ledger.
	history[0].Amount = big.NewInt(0)
	history = l.History(a)
	if history[0].Amount.Int64() != 100 {
		t.Fatalf("history must be insulated from caller mutation")
	}
}

func TestLedgerUnknownAccount(t *testing.T) {
	l := NewLedger()
	a := common.HexToAddress("0x0000000000000000000000000000000000000001")

	if l.BalanceOf(a).Sign() != 0 {
		t.Fatalf("unknown account balance must be zero")
	}
	if l.Profit(a).Sign() != 0 {
		t.Fatalf("unknown account profit must be zero")
	}
	if l.History(a) != nil {
		t.Fatalf("unknown account history must be nil")
	}
}
