package rpc

import (
	"fmt"

	"solgraph/asset"
)

// AssetResponse is the struct of returning data from the
// 'getAsset' rpc call.
type AssetResponse struct {
	jsonRPCResponse
	Error  *rpcError       `json:"error"`
	Result *RawAssetResult `json:"result"`
}

// RawAssetResult is the inner struct of struct 'AssetResponse'.
type RawAssetResult struct {
	Content struct {
		Metadata struct {
			Symbol string `json:"symbol"`
		} `json:"metadata"`
		Links struct {
			Image string `json:"image"`
		} `json:"links"`
	} `json:"content"`
	TokenInfo struct {
		Decimals uint8 `json:"decimals"`
	} `json:"token_info"`
}

// GetAsset fetches metadata of one fungible asset.
func GetAsset(mint string) (*asset.Asset, error) {
	params := map[string]interface{}{"id": mint}

	resp := AssetResponse{}
	if err := call("getAsset", params, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, resp.Error
	}

	if resp.Result == nil {
		return nil, fmt.Errorf("asset %s not found", mint)
	}

	return &asset.Asset{
		Mint:     mint,
		Ticker:   resp.Result.Content.Metadata.Symbol,
		Decimals: resp.Result.TokenInfo.Decimals,
		Icon:     resp.Result.Content.Links.Image,
	}, nil
}
