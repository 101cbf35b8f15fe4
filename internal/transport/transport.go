package transport

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Outbound is a migration message handed to the cross-chain transport. The
// execution hints (GasLimit, AllowOutOfOrder) are opaque to the vault core
// and passed through to the transport unchanged.
type Outbound struct {
	ChainSelector   uint64
	Receiver        common.Address // remote coordinator that accepts the principal
	Recipient       common.Address // payload: identity to credit on the remote side
	Token           common.Address
	Amount          *big.Int
	GasLimit        uint64
	AllowOutOfOrder bool
}

// Inbound is a message delivered from a remote chain. Amount may be nil when
// the message carries no token credit.
type Inbound struct {
	SourceChainSelector uint64
	Sender              common.Address
	Token               common.Address
	Amount              *big.Int
	Data                []byte
}

// Transport sends outbound messages. Delivery is fire-and-forget: only the
// synchronous accepted/rejected outcome is reported here; the remote effect
// arrives later through an independent inbound delivery.
type Transport interface {
	Send(ctx context.Context, msg Outbound) error
}
