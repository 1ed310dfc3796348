package tx

import "encoding/json"

// Well known program addresses.
const (
	// SystemProgram handles native lamport transfers and account creation.
	SystemProgram = "11111111111111111111111111111111"
	// TokenProgram handles fungible token accounts and transfers.
	TokenProgram = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	// AssociatedTokenProgram creates token accounts at derived addresses.
	AssociatedTokenProgram = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	// StakeProgram handles stake account creation and delegation.
	StakeProgram = "Stake11111111111111111111111111111111111111"
)

// Parsed instruction types recognized by the decoder.
const (
	TypeTransfer           = "transfer"
	TypeTransferChecked    = "transferChecked"
	TypeCreateAccount      = "createAccount"
	TypeCreateIdempotent   = "createIdempotent"
	TypeDelegate           = "delegate"
	TypeInitializeAccount3 = "initializeAccount3"
)

// Transaction is one fetched ledger transaction in decoded form.
type Transaction struct {
	TxID       string
	Signatures int
	Fee        uint64
	BlockTime  int64

	// Accounts is the ordered account key list. Balance snapshots
	// reference accounts by index into this list. The first entry
	// is the fee payer.
	Accounts []string

	Instructions []Instruction
	Inner        []InnerGroup

	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
}

// Instruction is one top level or inner instruction. Instructions the
// node could not parse carry only the program id; Type is empty and
// Info is nil for those.
type Instruction struct {
	ProgramID string
	Type      string
	Info      json.RawMessage
}

// IsParsed reports whether the instruction carries a parsed payload.
func (ix Instruction) IsParsed() bool {
	return ix.Type != ""
}

// InnerGroup is the ordered inner instruction list anchored to
// the top level instruction at Index.
type InnerGroup struct {
	Index        int
	Instructions []Instruction
}

// TokenBalance is one pre or post balance snapshot entry.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string
}

// Flow is one transfer record of the paginated account flow list.
// Amounts are raw integer units; Decimals comes with the record.
type Flow struct {
	TxID      string
	BlockTime int64
	From      string
	To        string
	Mint      string
	RawAmount uint64
	Decimals  uint8
	Kind      string
}

// FlowQuery holds the pagination parameters of an account flow request.
type FlowQuery struct {
	Direction string
	Sort      string
	Limit     int
	Page      int
}
