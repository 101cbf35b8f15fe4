package asset

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrTokenBalance = errors.New("token: insufficient balance")
	// ErrDirtyAllowance is returned on a nonzero-to-nonzero allowance change.
	// MemoryToken enforces the strict semantics so callers that skip the
	// reset step fail loudly in tests and simulations.
	ErrDirtyAllowance = errors.New("token: allowance must be reset to zero first")
)

// MemoryToken is a map-backed Token used by tests and the simulation harness.
// It is owned by a single vault address and enforces strict allowance resets.
type MemoryToken struct {
	vault      common.Address
	balances   map[common.Address]*big.Int
	allowances map[common.Address]*big.Int

	mu sync.Mutex
}

func NewMemoryToken(vault common.Address) *MemoryToken {
	return &MemoryToken{
		vault:      vault,
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]*big.Int),
	}
}

// Mint credits the holder out of thin air.
func (t *MemoryToken) Mint(holder common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(holder, amount)
}

func (t *MemoryToken) Pull(from common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.debit(from, amount); err != nil {
		return err
	}
	t.credit(t.vault, amount)
	return nil
}

func (t *MemoryToken) Push(to common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.debit(t.vault, amount); err != nil {
		return err
	}
	t.credit(to, amount)
	return nil
}

func (t *MemoryToken) BalanceOf(holder common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if bal, ok := t.balances[holder]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

func (t *MemoryToken) Approve(spender common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	current, ok := t.allowances[spender]
	if ok && current.Sign() != 0 && amount.Sign() != 0 {
		return ErrDirtyAllowance
	}
	t.allowances[spender] = new(big.Int).Set(amount)
	return nil
}

// Allowance reports the spender's current allowance. The returned value is a copy.
func (t *MemoryToken) Allowance(spender common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.allowances[spender]; ok {
		return new(big.Int).Set(a)
	}
	return new(big.Int)
}

func (t *MemoryToken) credit(holder common.Address, amount *big.Int) {
	bal, ok := t.balances[holder]
	if !ok {
		bal = new(big.Int)
		t.balances[holder] = bal
	}
	bal.Add(bal, amount)
}

func (t *MemoryToken) debit(holder common.Address, amount *big.Int) error {
	bal, ok := t.balances[holder]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrTokenBalance
	}
	bal.Sub(bal, amount)
	return nil
}
