package entity

import "math/big"

type TxKind string

const (
	MintTx   TxKind = "mint"
	ListTx   TxKind = "list"
	UnlistTx TxKind = "unlist"
	BuyTx    TxKind = "buy"
)

type TxStatus string

const (
	TxIdle       TxStatus = "idle"
	TxPending    TxStatus = "pending"
	TxConfirming TxStatus = "confirming"
	TxConfirmed  TxStatus = "confirmed"
	TxFailed     TxStatus = "failed"
)

func (s TxStatus) Terminal() bool {
	return s == TxConfirmed || s == TxFailed
}

func (s TxStatus) InFlight() bool {
	return s == TxPending || s == TxConfirming
}

// Call is a ledger-mutating contract call handed to a tracker.
type Call struct {
	Kind    TxKind
	Account string
	TokenId uint64
	Method  string
	Args    []interface{}
	Value   *big.Int
}

// TransactionRecord is the client-side lifecycle of one tracked call.
type TransactionRecord struct {
	Kind    TxKind   `json:"kind"`
	Status  TxStatus `json:"status"`
	Handle  string   `json:"handle,omitempty"`
	Account string   `json:"account,omitempty"`
	TokenId uint64   `json:"tokenId,omitempty"`
	Err     error    `json:"-"`
}

func (r TransactionRecord) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}

	return r.Err.Error()
}
