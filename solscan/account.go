package solscan

import (
	"fmt"

	"solgraph/addr"
)

// AccountMetadataResponse is the struct of returning data from the
// account metadata endpoint.
type AccountMetadataResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Label string   `json:"account_label"`
		Tags  []string `json:"account_tags"`
		Type  string   `json:"account_type"`
		Icon  string   `json:"account_icon"`
	} `json:"data"`
}

// GetAccountMetadata fetches label, tags, type and icon of one address.
func GetAccountMetadata(address string) (*addr.Account, error) {
	args := map[string]string{"address": address}

	resp := AccountMetadataResponse{}
	if err := get("/account/metadata", args, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, fmt.Errorf("metadata lookup for %s was not successful", address)
	}

	return &addr.Account{
		Address: address,
		Label:   resp.Data.Label,
		Tags:    addr.JoinTags(resp.Data.Tags),
		Type:    resp.Data.Type,
		Icon:    resp.Data.Icon,
	}, nil
}
