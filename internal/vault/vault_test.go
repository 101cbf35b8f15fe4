package vault

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldBridge/internal/asset"
	"yieldBridge/internal/model"
)

func TestDepositValidation(t *testing.T) {
	f := newFixture(t)
	v := f.vault

	assert.ErrorIs(t, v.Deposit(alice, nil), ErrInvalidAmount)
	assert.ErrorIs(t, v.Deposit(alice, big.NewInt(0)), ErrInvalidAmount)
	assert.ErrorIs(t, v.Deposit(alice, big.NewInt(-5)), ErrInvalidAmount)
	assert.Equal(t, int64(0), v.TotalDeposited().Int64())
}

func TestDepositPullFailureLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	v := f.vault
	pauper := alice

	// Alice holds far less than this.
	err := v.Deposit(pauper, big.NewInt(1_000_000))
	require.Error(t, err)
	assert.ErrorIs(t, err, asset.ErrTokenBalance)

	assert.Equal(t, int64(0), v.TotalDeposited().Int64())
	assert.Equal(t, int64(0), v.BalanceOf(pauper).Int64())
	assert.Nil(t, v.History(pauper))
}

func TestWithdrawBounds(t *testing.T) {
	f := newFixture(t)
	v := f.vault

	require.NoError(t, v.Deposit(alice, big.NewInt(100)))

	assert.ErrorIs(t, v.Withdraw(alice, big.NewInt(101)), ErrInsufficientBalance)
	assert.ErrorIs(t, v.Withdraw(bob, big.NewInt(1)), ErrInsufficientBalance)
	assert.ErrorIs(t, v.Withdraw(alice, big.NewInt(0)), ErrInvalidAmount)

	aliceBefore := f.token.BalanceOf(alice)
	require.NoError(t, v.Withdraw(alice, big.NewInt(60)))
	assert.Equal(t, int64(40), v.BalanceOf(alice).Int64())
	assert.Equal(t, int64(40), v.TotalDeposited().Int64())
	assert.Equal(t, new(big.Int).Add(aliceBefore, big.NewInt(60)), f.token.BalanceOf(alice))

	// The rest is withdrawable down to exactly zero.
	require.NoError(t, v.Withdraw(alice, big.NewInt(40)))
	assert.Equal(t, int64(0), v.TotalDeposited().Int64())
	assert.ErrorIs(t, v.Withdraw(alice, big.NewInt(1)), ErrInsufficientBalance)
}

func TestWithdrawYieldCredit(t *testing.T) {
	f := newFixture(t)
	v := f.vault

	require.NoError(t, v.Deposit(alice, big.NewInt(100)))
	require.NoError(t, v.HandleInbound(inboundCredit(50, alice)))
	assert.Equal(t, int64(150), v.BalanceOf(alice).Int64())

	// Spendable balance covers the credit, but the held asset does not: the
	// loopback venue credits accounting, not tokens.
	err := v.Withdraw(alice, big.NewInt(150))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Topping up the vault's held balance makes the credit withdrawable.
	f.token.MemoryToken.Mint(self, big.NewInt(50))
	require.NoError(t, v.Withdraw(alice, big.NewInt(150)))
	assert.Equal(t, int64(50), v.Profit(alice).Int64())
}

func TestAuditFailureDoesNotAbortOperations(t *testing.T) {
	f := newFixture(t)
	v := f.vault
	// Swap in a fixture whose sink always fails.
	failing := &failingSink{err: errors.New("sink down")}
	v.audit = failing

	require.NoError(t, v.Deposit(alice, big.NewInt(100)))
	require.NoError(t, v.ForceUnlock(authority))
	assert.Greater(t, failing.calls, 0)
}

type failingSink struct {
	err   error
	calls int
}

func (s *failingSink) PutAuditBatch(events []model.AuditEvent) error {
	s.calls++
	return s.err
}
