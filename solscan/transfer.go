package solscan

import (
	"fmt"
	"strconv"
	"strings"

	"solgraph/tx"
)

// TransferResponse is the struct of returning data from the account
// transfer endpoint.
type TransferResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		TxID         string `json:"trans_id"`
		BlockTime    int64  `json:"block_time"`
		ActivityType string `json:"activity_type"`
		From         string `json:"from_address"`
		To           string `json:"to_address"`
		Mint         string `json:"token_address"`
		Decimals     uint8  `json:"token_decimals"`
		Amount       uint64 `json:"amount"`
	} `json:"data"`
}

// GetTransfers fetches one page of an account's transfer records.
func GetTransfers(address string, q tx.FlowQuery) ([]*tx.Flow, error) {
	flow := q.Direction
	if flow == "" {
		flow = "in"
	}

	sortOrder := q.Sort
	if sortOrder == "" {
		sortOrder = "asc"
	}

	args := map[string]string{
		"address":    address,
		"flow":       flow,
		"sort_by":    "block_time",
		"sort_order": sortOrder,
		"page":       strconv.Itoa(q.Page),
		"page_size":  strconv.Itoa(q.Limit),
	}

	resp := TransferResponse{}
	if err := get("/account/transfer", args, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, fmt.Errorf("transfer lookup for %s was not successful", address)
	}

	flows := make([]*tx.Flow, 0, len(resp.Data))
	for _, row := range resp.Data {
		flows = append(flows, &tx.Flow{
			TxID:      row.TxID,
			BlockTime: row.BlockTime,
			From:      row.From,
			To:        row.To,
			Mint:      row.Mint,
			RawAmount: row.Amount,
			Decimals:  row.Decimals,
			Kind:      activityKind(row.ActivityType),
		})
	}

	return flows, nil
}

// activityKind maps solscan activity types onto edge kinds,
// e.g. ACTIVITY_SPL_TRANSFER becomes transfer.
func activityKind(activity string) string {
	return strings.ToLower(strings.TrimPrefix(activity, "ACTIVITY_SPL_"))
}
