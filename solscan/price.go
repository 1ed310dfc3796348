package solscan

import (
	"fmt"

	"solgraph/price"

	"github.com/shopspring/decimal"
)

// PriceResponse is the struct of returning data from the token price
// endpoint. Days inside the requested range without a known price
// simply have no entry.
type PriceResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		Date  int64           `json:"date"`
		Price decimal.Decimal `json:"price"`
	} `json:"data"`
}

// GetPriceRange fetches daily prices of one mint over an inclusive
// day range, days in 'YYYYMMDD' form.
func GetPriceRange(mint, fromDay, toDay string) ([]*price.Price, error) {
	args := map[string]string{
		"address":   mint,
		"from_time": fromDay,
		"to_time":   toDay,
	}

	resp := PriceResponse{}
	if err := get("/token/price", args, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, fmt.Errorf("price lookup for %s was not successful", mint)
	}

	prices := make([]*price.Price, 0, len(resp.Data))
	for _, row := range resp.Data {
		v := row.Price
		prices = append(prices, &price.Price{
			Mint:  mint,
			Day:   fmt.Sprintf("%d", row.Date),
			Value: &v,
		})
	}

	return prices, nil
}
