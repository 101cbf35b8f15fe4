package vault

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"yieldBridge/internal/asset"
	"yieldBridge/internal/model"
	"yieldBridge/internal/storage"
	"yieldBridge/internal/transport"
)

// Config holds the wiring for a Vault.
type Config struct {
	// Authority is the single controlling identity; every admin entry point
	// checks the caller against it.
	Authority common.Address
	// Self is the vault's own identity, the holder of pooled assets.
	Self common.Address
	// TokenAddr is the canonical asset identity as it appears on the wire.
	TokenAddr common.Address
	// Router is the transport spender granted the migration allowance.
	Router common.Address

	Params Params

	// Transport execution hints, passed through opaquely.
	GasLimit        uint64
	AllowOutOfOrder bool
}

// Vault is the public operation surface. A single mutex serializes every
// operation; calls that observe a locked pool fail fast rather than block.
type Vault struct {
	mu sync.Mutex

	cfg    Config
	ledger *Ledger
	params Params
	allow  *Allowlists
	state  model.MigrationState

	token    asset.Token
	feeToken asset.Token
	sender   transport.Transport

	audit  storage.AuditSink
	logger *zap.Logger
	now    func() time.Time
}

// NewVault builds a Vault with its collaborators. sink may be nil to disable
// the audit trail.
func NewVault(cfg Config, token, feeToken asset.Token, sender transport.Transport, sink storage.AuditSink, logger *zap.Logger) *Vault {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Vault{
		cfg:      cfg,
		ledger:   NewLedger(),
		params:   cfg.Params,
		allow:    NewAllowlists(),
		state:    model.Idle,
		token:    token,
		feeToken: feeToken,
		sender:   sender,
		audit:    sink,
		logger:   logger,
		now:      time.Now,
	}
	start := v.now()
	if v.params.LastRebalanced.IsZero() {
		v.params.LastRebalanced = start
	}
	if v.params.LastAccrued.IsZero() {
		v.params.LastAccrued = start
	}
	return v
}

// SetClock replaces the time source. Test helper; not safe once the vault is
// in use.
func (v *Vault) SetClock(now func() time.Time) {
	v.now = now
}

// Deposit pulls amount from the depositor into the pool.
func (v *Vault) Deposit(from common.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if v.state == model.Locked {
		return ErrPoolLocked
	}
	if err := v.token.Pull(from, amount); err != nil {
		return fmt.Errorf("pull deposit: %w", err)
	}
	v.ledger.RecordDeposit(from, amount, v.now())
	return nil
}

// Withdraw pushes amount back to the account out of its spendable balance.
func (v *Vault) Withdraw(to common.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if v.state == model.Locked {
		return ErrPoolLocked
	}
	if v.ledger.BalanceOf(to).Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if v.token.BalanceOf(v.cfg.Self).Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := v.token.Push(to, amount); err != nil {
		return fmt.Errorf("push withdrawal: %w", err)
	}
	v.ledger.RecordWithdraw(to, amount, v.now())
	return nil
}

// AccrueYield pulls simple-interest yield from the authority into the pool.
// It credits no individual account; the record is pool-level.
func (v *Vault) AccrueYield(caller common.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireAuthority(caller); err != nil {
		return err
	}
	now := v.now()
	elapsed := int64(now.Sub(v.params.LastAccrued) / time.Second)
	if elapsed <= 0 {
		return ErrNothingToAccrue
	}
	yield := simpleInterest(v.ledger.TotalDeposited(), v.params.LocalAPY, elapsed)
	if yield.Sign() > 0 {
		if err := v.token.Pull(v.cfg.Authority, yield); err != nil {
			return fmt.Errorf("pull yield: %w", err)
		}
	}
	v.params.LastAccrued = now
	v.emit(model.AuditEvent{
		Kind:   model.AuditYieldAccrued,
		Amount: yield,
		Detail: fmt.Sprintf("local apy %d%%, %ds elapsed", v.params.LocalAPY, elapsed),
	})
	v.logger.Info("yield accrued",
		zap.String("amount", yield.String()),
		zap.Int64("elapsed_seconds", elapsed),
	)
	return nil
}

// EmergencyWithdrawAll sweeps the vault's entire held asset balance to the
// authority. The ledger is left untouched.
func (v *Vault) EmergencyWithdrawAll(caller common.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireAuthority(caller); err != nil {
		return err
	}
	balance := v.token.BalanceOf(v.cfg.Self)
	if balance.Sign() > 0 {
		if err := v.token.Push(v.cfg.Authority, balance); err != nil {
			return fmt.Errorf("sweep balance: %w", err)
		}
	}
	v.emit(model.AuditEvent{
		Kind:    model.AuditEmergencyWithdraw,
		Account: v.cfg.Authority.Hex(),
		Amount:  balance,
	})
	v.logger.Warn("emergency withdraw", zap.String("amount", balance.String()))
	return nil
}

// Admin setters. Each checks the caller against the authority first.

func (v *Vault) SetLocalAPY(caller common.Address, pct uint8) error {
	return v.adminUpdate(caller, func() error { return v.params.setLocalAPY(pct) })
}

func (v *Vault) SetRemoteAPY(caller common.Address, pct uint8) error {
	return v.adminUpdate(caller, func() error { return v.params.setRemoteAPY(pct) })
}

func (v *Vault) SetRebalanceInterval(caller common.Address, d time.Duration) error {
	return v.adminUpdate(caller, func() error { return v.params.setRebalanceInterval(d) })
}

func (v *Vault) SetYieldReceiver(caller common.Address, addr common.Address) error {
	return v.adminUpdate(caller, func() error { return v.params.setYieldReceiver(addr) })
}

func (v *Vault) SetDestination(caller common.Address, dest Destination) error {
	return v.adminUpdate(caller, func() error { return v.params.setDestination(dest) })
}

func (v *Vault) AllowSourceChain(caller common.Address, selector uint64, allowed bool) error {
	return v.adminUpdate(caller, func() error {
		v.allow.SourceChains[selector] = allowed
		return nil
	})
}

func (v *Vault) AllowSender(caller common.Address, sender common.Address, allowed bool) error {
	return v.adminUpdate(caller, func() error {
		v.allow.Senders[sender] = allowed
		return nil
	})
}

func (v *Vault) AllowDestinationChain(caller common.Address, selector uint64, allowed bool) error {
	return v.adminUpdate(caller, func() error {
		v.allow.Destinations[selector] = allowed
		return nil
	})
}

func (v *Vault) adminUpdate(caller common.Address, apply func() error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.requireAuthority(caller); err != nil {
		return err
	}
	return apply()
}

func (v *Vault) requireAuthority(caller common.Address) error {
	if caller != v.cfg.Authority {
		return ErrNotAuthority
	}
	return nil
}

// Read accessors.

func (v *Vault) State() model.MigrationState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *Vault) TotalDeposited() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ledger.TotalDeposited()
}

func (v *Vault) BalanceOf(addr common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ledger.BalanceOf(addr)
}

func (v *Vault) Profit(addr common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ledger.Profit(addr)
}

func (v *Vault) History(addr common.Address) []model.TransactionRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ledger.History(addr)
}

func (v *Vault) FeeBalance() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.feeToken.BalanceOf(v.cfg.Self)
}

func (v *Vault) LastRebalanced() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params.LastRebalanced
}

// emit appends an audit event. Audit failures are logged, never propagated:
// the trail is for visibility and must not abort ledger operations.
func (v *Vault) emit(event model.AuditEvent) {
	if v.audit == nil {
		return
	}
	event.ID = uuid.NewString()
	if event.At.IsZero() {
		event.At = v.now()
	}
	if err := v.audit.PutAuditBatch([]model.AuditEvent{event}); err != nil {
		v.logger.Warn("audit write failed", zap.String("kind", string(event.Kind)), zap.Error(err))
	}
}
