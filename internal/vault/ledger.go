package vault

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"yieldBridge/internal/model"
)

// Account is one depositor's ledger entry. The cumulative counters are
// monotonic; History is append-only and never truncated.
type Account struct {
	TotalDeposited   *big.Int
	TotalWithdrawn   *big.Int
	Balance          *big.Int
	LastDepositTime  time.Time
	LastWithdrawTime time.Time
	History          []model.TransactionRecord
}

// Ledger tracks per-depositor accounting and the pool principal. It performs
// no locking of its own; the Vault facade serializes access.
type Ledger struct {
	accounts map[common.Address]*Account
	// pool is the aggregate principal currently held. Cross-chain yield
	// credits raise account balances but never the pool: they are owed
	// balance, not principal.
	pool *big.Int
}

func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[common.Address]*Account),
		pool:     new(big.Int),
	}
}

// TotalDeposited returns the pool principal. The returned value is a copy.
func (l *Ledger) TotalDeposited() *big.Int {
	return new(big.Int).Set(l.pool)
}

// BalanceOf returns the account's spendable balance. Copy.
func (l *Ledger) BalanceOf(addr common.Address) *big.Int {
	if acct, ok := l.accounts[addr]; ok {
		return new(big.Int).Set(acct.Balance)
	}
	return new(big.Int)
}

// Profit returns totalWithdrawn - totalDeposited for the account; negative
// before the account has withdrawn more than it put in.
func (l *Ledger) Profit(addr common.Address) *big.Int {
	acct, ok := l.accounts[addr]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Sub(acct.TotalWithdrawn, acct.TotalDeposited)
}

// History returns a copy of the account's transaction records in append order.
func (l *Ledger) History(addr common.Address) []model.TransactionRecord {
	acct, ok := l.accounts[addr]
	if !ok {
		return nil
	}
	out := make([]model.TransactionRecord, len(acct.History))
	copy(out, acct.History)
	return out
}

// RecordDeposit applies a validated local deposit: pool and account counters
// rise together. The asset has already been pulled by the caller.
func (l *Ledger) RecordDeposit(addr common.Address, amount *big.Int, now time.Time) {
	acct := l.account(addr)
	acct.TotalDeposited.Add(acct.TotalDeposited, amount)
	acct.Balance.Add(acct.Balance, amount)
	acct.LastDepositTime = now
	l.pool.Add(l.pool, amount)
	acct.History = append(acct.History, model.TransactionRecord{
		Amount:    new(big.Int).Set(amount),
		Timestamp: now,
		Kind:      model.TxDeposit,
		Origin:    model.OriginLocal,
	})
}

// RecordWithdraw applies a validated local withdrawal.
func (l *Ledger) RecordWithdraw(addr common.Address, amount *big.Int, now time.Time) {
	acct := l.account(addr)
	acct.TotalWithdrawn.Add(acct.TotalWithdrawn, amount)
	acct.Balance.Sub(acct.Balance, amount)
	acct.LastWithdrawTime = now
	l.pool.Sub(l.pool, amount)
	acct.History = append(acct.History, model.TransactionRecord{
		Amount:    new(big.Int).Set(amount),
		Timestamp: now,
		Kind:      model.TxWithdraw,
		Origin:    model.OriginLocal,
	})
}

// CreditYield raises the recipient's spendable balance without touching the
// pool principal. Called only on authorized inbound receipt.
func (l *Ledger) CreditYield(addr common.Address, amount *big.Int, now time.Time) {
	acct := l.account(addr)
	acct.Balance.Add(acct.Balance, amount)
	acct.History = append(acct.History, model.TransactionRecord{
		Amount:    new(big.Int).Set(amount),
		Timestamp: now,
		Kind:      model.TxYieldCredit,
		Origin:    model.OriginCrossChain,
	})
}

func (l *Ledger) account(addr common.Address) *Account {
	acct, ok := l.accounts[addr]
	if !ok {
		acct = &Account{
			TotalDeposited: new(big.Int),
			TotalWithdrawn: new(big.Int),
			Balance:        new(big.Int),
		}
		l.accounts[addr] = acct
	}
	return acct
}
