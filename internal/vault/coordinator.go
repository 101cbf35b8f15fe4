package vault

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"yieldBridge/internal/model"
	"yieldBridge/internal/transport"
)

// CheckAutomation evaluates the automation gate against current state. The
// diagnostics report each precondition individually.
func (v *Vault) CheckAutomation() (bool, Diagnostics) {
	v.mu.Lock()
	defer v.mu.Unlock()
	diag := v.checkLocked()
	return diag.Ready(), diag
}

func (v *Vault) checkLocked() Diagnostics {
	return checkUpkeep(gateInput{
		now:         v.now(),
		params:      v.params,
		state:       v.state,
		pool:        v.ledger.TotalDeposited(),
		heldBalance: v.token.BalanceOf(v.cfg.Self),
		feeBalance:  v.feeToken.BalanceOf(v.cfg.Self),
	})
}

// RunAutomation performs one check-then-act cycle: a no-op success when the
// gate is not ready, otherwise a single atomic migration attempt.
func (v *Vault) RunAutomation(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	diag := v.checkLocked()
	if !diag.Ready() {
		v.logger.Debug("automation not ready", zap.Strings("reasons", diag.Reasons()))
		return nil
	}
	return v.migrate(ctx)
}

// migrate executes the Idle -> Locked transition: lock the pool, authorize
// the router over exactly the principal, and hand the message to the
// transport. Any failure reverts the state to Idle with no net change.
// Caller holds the mutex.
func (v *Vault) migrate(ctx context.Context) error {
	principal := v.ledger.TotalDeposited()
	if principal.Sign() == 0 {
		return ErrNothingToMigrate
	}
	held := v.token.BalanceOf(v.cfg.Self)
	if held.Cmp(principal) < 0 {
		return ErrInsufficientBalance
	}
	if v.feeToken.BalanceOf(v.cfg.Self).Sign() == 0 {
		return ErrNoFeeBalance
	}
	dest := v.params.Destination
	if !v.allow.Destinations[dest.ChainSelector] {
		return ErrDestinationNotAllowed
	}

	now := v.now()
	v.state = model.Locked
	v.emit(model.AuditEvent{
		Kind:          model.AuditMigrationStarted,
		At:            now,
		Amount:        principal,
		ChainSelector: dest.ChainSelector,
		Detail:        "held balance " + held.String(),
	})
	v.logger.Info("migration started",
		zap.String("principal", principal.String()),
		zap.String("held_balance", held.String()),
		zap.Uint64("chain_selector", dest.ChainSelector),
	)

	// Reset-to-zero before setting: some tokens reject a nonzero-to-nonzero
	// allowance change.
	if err := v.token.Approve(v.cfg.Router, new(big.Int)); err != nil {
		v.state = model.Idle
		return &ApprovalError{Step: "reset", Err: err}
	}
	if err := v.token.Approve(v.cfg.Router, principal); err != nil {
		v.state = model.Idle
		return &ApprovalError{Step: "set", Err: err}
	}

	msg := transport.Outbound{
		ChainSelector:   dest.ChainSelector,
		Receiver:        dest.Receiver,
		Recipient:       v.params.YieldReceiver,
		Token:           v.cfg.TokenAddr,
		Amount:          principal,
		GasLimit:        v.cfg.GasLimit,
		AllowOutOfOrder: v.cfg.AllowOutOfOrder,
	}
	if err := v.sender.Send(ctx, msg); err != nil {
		v.state = model.Idle
		return &TransportError{Reason: err}
	}

	v.params.LastRebalanced = now
	v.emit(model.AuditEvent{
		Kind:          model.AuditMigrationSent,
		Amount:        principal,
		ChainSelector: dest.ChainSelector,
		Account:       v.params.YieldReceiver.Hex(),
	})
	v.logger.Info("migration sent, awaiting remote acknowledgment",
		zap.String("principal", principal.String()),
		zap.String("receiver", dest.Receiver.Hex()),
	)
	return nil
}

// HandleInbound is the delivery entry point for the transport. Authorization
// fails closed; unauthorized messages are dropped with no credit and no state
// change, observable only through the audit trail.
//
// Any authorized credit of the canonical asset reopens a locked pool. There
// is no correlation id tying an acknowledgment to the migration that is in
// flight, so a same-shaped message arriving for an unrelated reason unlocks
// too. Known tradeoff, kept as-is.
func (v *Vault) HandleInbound(msg transport.Inbound) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.allow.Authorize(msg.SourceChainSelector, msg.Sender); err != nil {
		v.emit(model.AuditEvent{
			Kind:          model.AuditInboundDropped,
			Account:       msg.Sender.Hex(),
			ChainSelector: msg.SourceChainSelector,
			Detail:        err.Error(),
		})
		v.logger.Warn("inbound message dropped",
			zap.Uint64("source_chain", msg.SourceChainSelector),
			zap.String("sender", msg.Sender.Hex()),
			zap.Error(err),
		)
		return err
	}

	if msg.Token != v.cfg.TokenAddr || msg.Amount == nil || msg.Amount.Sign() <= 0 || len(msg.Data) != common.AddressLength {
		// Unrelated delivery (wrong asset, no credit, or malformed payload):
		// deliberately a no-op, not an error.
		v.emit(model.AuditEvent{
			Kind:          model.AuditInboundIgnored,
			Account:       msg.Sender.Hex(),
			ChainSelector: msg.SourceChainSelector,
			Detail:        "token " + msg.Token.Hex(),
		})
		v.logger.Info("inbound message ignored",
			zap.Uint64("source_chain", msg.SourceChainSelector),
			zap.String("token", msg.Token.Hex()),
		)
		return nil
	}

	recipient := common.BytesToAddress(msg.Data)
	now := v.now()

	if v.state == model.Locked {
		v.state = model.Idle
		v.emit(model.AuditEvent{
			Kind:          model.AuditMigrationCompleted,
			At:            now,
			Amount:        msg.Amount,
			ChainSelector: msg.SourceChainSelector,
		})
		v.logger.Info("migration completed, pool unlocked",
			zap.String("amount", msg.Amount.String()),
		)
	}

	v.ledger.CreditYield(recipient, msg.Amount, now)
	v.logger.Info("yield credited",
		zap.String("recipient", recipient.Hex()),
		zap.String("amount", msg.Amount.String()),
	)
	return nil
}

// ForceUnlock is the administrative override for a stuck lock. It is
// idempotent, bypasses every migration check, and never mutates balances.
func (v *Vault) ForceUnlock(caller common.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireAuthority(caller); err != nil {
		return err
	}
	prior := v.state
	v.state = model.Idle
	v.emit(model.AuditEvent{
		Kind:   model.AuditForceUnlock,
		Detail: "prior state " + prior.String(),
	})
	v.logger.Warn("force unlock", zap.Stringer("prior_state", prior))
	return nil
}
