package asset

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	vaultAddr = common.HexToAddress("0x00000000000000000000000000000000000000B0")
	holder    = common.HexToAddress("0x0000000000000000000000000000000000000001")
	spender   = common.HexToAddress("0x00000000000000000000000000000000000000D0")
)

func TestMemoryTokenPullPush(t *testing.T) {
	token := NewMemoryToken(vaultAddr)
	token.Mint(holder, big.NewInt(100))

	if err := token.Pull(holder, big.NewInt(60)); err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if got := token.BalanceOf(vaultAddr).Int64(); got != 60 {
		t.Fatalf("vault balance = %d, want 60", got)
	}
	if got := token.BalanceOf(holder).Int64(); got != 40 {
		t.Fatalf("holder balance = %d, want 40", got)
	}

	if err := token.Pull(holder, big.NewInt(41)); !errors.Is(err, ErrTokenBalance) {
		t.Fatalf("overdraft pull = %v, want ErrTokenBalance", err)
	}

	if err := token.Push(holder, big.NewInt(60)); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if err := token.Push(holder, big.NewInt(1)); !errors.Is(err, ErrTokenBalance) {
		t.Fatalf("overdraft push = %v, want ErrTokenBalance", err)
	}
}

func TestMemoryTokenBalanceIsolation(t *testing.T) {
	token := NewMemoryToken(vaultAddr)
	token.Mint(holder, big.NewInt(100))

	bal := token.BalanceOf(holder)
	bal.SetInt64(0)
	if got := token.BalanceOf(holder).Int64(); got != 100 {
		t.Fatalf("balance mutated through returned copy: %d", got)
	}
}

func TestMemoryTokenStrictAllowance(t *testing.T) {
	token := NewMemoryToken(vaultAddr)

	if err := token.Approve(spender, big.NewInt(100)); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	if err := token.Approve(spender, big.NewInt(200)); !errors.Is(err, ErrDirtyAllowance) {
		t.Fatalf("nonzero-to-nonzero approve = %v, want ErrDirtyAllowance", err)
	}
	if err := token.Approve(spender, new(big.Int)); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if err := token.Approve(spender, big.NewInt(200)); err != nil {
		t.Fatalf("approve after reset failed: %v", err)
	}
	if got := token.Allowance(spender).Int64(); got != 200 {
		t.Fatalf("allowance = %d, want 200", got)
	}
}
