package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"solgraph/tx"
)

// TransactionResponse is the struct of returning data from the
// 'getTransaction' rpc call, jsonParsed encoding.
type TransactionResponse struct {
	jsonRPCResponse
	Error  *rpcError             `json:"error"`
	Result *RawTransactionResult `json:"result"`
}

// RawTransactionResult is the inner struct of struct 'TransactionResponse'.
type RawTransactionResult struct {
	BlockTime   int64           `json:"blockTime"`
	Meta        *RawMeta        `json:"meta"`
	Transaction *RawTransaction `json:"transaction"`
}

// RawMeta is the meta part of transaction data.
type RawMeta struct {
	Fee               uint64            `json:"fee"`
	InnerInstructions []RawInnerGroup   `json:"innerInstructions"`
	PreTokenBalances  []RawTokenBalance `json:"preTokenBalances"`
	PostTokenBalances []RawTokenBalance `json:"postTokenBalances"`
}

// RawTransaction is the message part of transaction data.
type RawTransaction struct {
	Signatures []string `json:"signatures"`
	Message    struct {
		AccountKeys []struct {
			Pubkey string `json:"pubkey"`
		} `json:"accountKeys"`
		Instructions []RawInstruction `json:"instructions"`
	} `json:"message"`
}

// RawInstruction is one instruction in jsonParsed form. Parsed is kept
// raw here: depending on the program it may be an object, a bare
// string, or absent entirely.
type RawInstruction struct {
	ProgramID string          `json:"programId"`
	Parsed    json.RawMessage `json:"parsed"`
}

// RawInnerGroup is one inner instruction group, anchored to the top
// level instruction at Index.
type RawInnerGroup struct {
	Index        int              `json:"index"`
	Instructions []RawInstruction `json:"instructions"`
}

// RawTokenBalance is one pre/post token balance snapshot entry.
type RawTokenBalance struct {
	AccountIndex int    `json:"accountIndex"`
	Mint         string `json:"mint"`
	Owner        string `json:"owner"`
}

// GetTransaction fetches one transaction in jsonParsed encoding and
// converts it to the decoded form the graph builder consumes.
func GetTransaction(txID string) (*tx.Transaction, error) {
	params := []interface{}{
		txID,
		map[string]interface{}{
			"encoding":                       "jsonParsed",
			"maxSupportedTransactionVersion": 0,
		},
	}

	resp := TransactionResponse{}
	if err := call("getTransaction", params, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, resp.Error
	}

	if resp.Result == nil || resp.Result.Meta == nil || resp.Result.Transaction == nil {
		return nil, fmt.Errorf("transaction %s not found", txID)
	}

	return convertTransaction(resp.Result)
}

func convertTransaction(result *RawTransactionResult) (*tx.Transaction, error) {
	raw := result.Transaction

	if len(raw.Signatures) == 0 {
		return nil, errors.New("transaction carries no signatures")
	}

	t := &tx.Transaction{
		TxID:       raw.Signatures[0],
		Signatures: len(raw.Signatures),
		Fee:        result.Meta.Fee,
		BlockTime:  result.BlockTime,
	}

	for _, key := range raw.Message.AccountKeys {
		t.Accounts = append(t.Accounts, key.Pubkey)
	}

	for _, ix := range raw.Message.Instructions {
		t.Instructions = append(t.Instructions, convertInstruction(ix))
	}

	for _, group := range result.Meta.InnerInstructions {
		converted := tx.InnerGroup{Index: group.Index}
		for _, ix := range group.Instructions {
			converted.Instructions = append(converted.Instructions, convertInstruction(ix))
		}
		t.Inner = append(t.Inner, converted)
	}

	for _, balance := range result.Meta.PreTokenBalances {
		t.PreTokenBalances = append(t.PreTokenBalances, tx.TokenBalance(balance))
	}
	for _, balance := range result.Meta.PostTokenBalances {
		t.PostTokenBalances = append(t.PostTokenBalances, tx.TokenBalance(balance))
	}

	return t, nil
}

// convertInstruction lifts one raw instruction into decoded form.
// Anything without a well formed {type, info} payload stays opaque,
// keeping only its program id.
func convertInstruction(ix RawInstruction) tx.Instruction {
	out := tx.Instruction{ProgramID: ix.ProgramID}

	if len(ix.Parsed) == 0 {
		return out
	}

	var parsed struct {
		Type string          `json:"type"`
		Info json.RawMessage `json:"info"`
	}

	if err := json.Unmarshal(ix.Parsed, &parsed); err != nil || parsed.Type == "" {
		return out
	}

	out.Type = parsed.Type
	out.Info = parsed.Info

	return out
}
