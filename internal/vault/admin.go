package vault

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const secondsPerYear = 31_536_000

// Destination identifies the remote coordinator a migration targets.
type Destination struct {
	ChainSelector uint64
	Receiver      common.Address
}

// Params are the authority-controlled operational parameters. APYs are whole
// percentages, bounded 0-100 inclusive.
type Params struct {
	LocalAPY          uint8
	RemoteAPY         uint8
	RebalanceInterval time.Duration
	YieldReceiver     common.Address
	Destination       Destination

	LastRebalanced time.Time
	LastAccrued    time.Time
}

func (p *Params) setLocalAPY(pct uint8) error {
	if pct > 100 {
		return ErrInvalidPercentage
	}
	p.LocalAPY = pct
	return nil
}

func (p *Params) setRemoteAPY(pct uint8) error {
	if pct > 100 {
		return ErrInvalidPercentage
	}
	p.RemoteAPY = pct
	return nil
}

func (p *Params) setRebalanceInterval(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidInterval
	}
	p.RebalanceInterval = d
	return nil
}

func (p *Params) setYieldReceiver(addr common.Address) error {
	if addr == (common.Address{}) {
		return ErrZeroAddress
	}
	p.YieldReceiver = addr
	return nil
}

func (p *Params) setDestination(dest Destination) error {
	if dest.Receiver == (common.Address{}) {
		return ErrZeroAddress
	}
	p.Destination = dest
	return nil
}

// Allowlists gate inbound deliveries (source chains, senders) and outbound
// initiation (destination chains). Mutated only through authority-gated
// Vault entry points.
type Allowlists struct {
	SourceChains map[uint64]bool
	Senders      map[common.Address]bool
	Destinations map[uint64]bool
}

func NewAllowlists() *Allowlists {
	return &Allowlists{
		SourceChains: make(map[uint64]bool),
		Senders:      make(map[common.Address]bool),
		Destinations: make(map[uint64]bool),
	}
}

// Authorize is the inbound guard predicate: both the source chain and the
// sender must be allowlisted. Fails closed.
func (a *Allowlists) Authorize(sourceChain uint64, sender common.Address) error {
	if !a.SourceChains[sourceChain] {
		return ErrChainNotAllowed
	}
	if !a.Senders[sender] {
		return ErrSenderNotAllowed
	}
	return nil
}

// simpleInterest computes floor(floor(pool * apy / 100) * elapsed / secondsPerYear).
// The double floor matches integer on-ledger arithmetic: the annual yield is
// truncated before being scaled by elapsed time.
func simpleInterest(pool *big.Int, apyPct uint8, elapsedSeconds int64) *big.Int {
	annual := new(big.Int).Mul(pool, big.NewInt(int64(apyPct)))
	annual.Div(annual, big.NewInt(100))
	yield := annual.Mul(annual, big.NewInt(elapsedSeconds))
	return yield.Div(yield, big.NewInt(secondsPerYear))
}
