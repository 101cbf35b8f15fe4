package asset

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token is the fungible-asset collaborator the vault moves funds through.
// Implementations must tolerate the approve reset-then-set sequence: the vault
// always resets an allowance to zero before setting a nonzero value, because
// some tokens reject a nonzero-to-nonzero allowance change.
type Token interface {
	// Pull transfers amount from the holder into the vault.
	Pull(from common.Address, amount *big.Int) error
	// Push transfers amount from the vault to the holder.
	Push(to common.Address, amount *big.Int) error
	// BalanceOf reports the holder's balance. The returned value is a copy.
	BalanceOf(holder common.Address) *big.Int
	// Approve sets the spender's allowance over the vault's balance.
	Approve(spender common.Address, amount *big.Int) error
}
