package model

import (
	"math/big"
	"time"
)

// TxKind classifies a ledger history entry.
type TxKind string

const (
	TxDeposit     TxKind = "deposit"
	TxWithdraw    TxKind = "withdraw"
	TxYieldCredit TxKind = "yield_credit"
)

// TxOrigin records whether an entry was produced locally or by a cross-chain delivery.
type TxOrigin string

const (
	OriginLocal      TxOrigin = "local"
	OriginCrossChain TxOrigin = "cross_chain"
)

// TransactionRecord is one append-only ledger history entry.
type TransactionRecord struct {
	Amount    *big.Int  `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
	Kind      TxKind    `json:"kind"`
	Origin    TxOrigin  `json:"origin"`
}
