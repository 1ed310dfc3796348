package db

import (
	"database/sql"
	"fmt"
	"strings"

	"solgraph/price"

	"github.com/shopspring/decimal"
)

// GetPrices returns cached daily price rows for the given keys.
// A returned row with a nil value means the day was already resolved
// upstream as having no price.
func GetPrices(keys []price.Key) (map[price.Key]*price.Price, error) {
	result := make(map[price.Key]*price.Price)
	if len(keys) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("(?, ?), ", len(keys))
	placeholders = placeholders[:len(placeholders)-2]

	query := fmt.Sprintf("SELECT `mint`, `day`, `price` FROM `prices_daily` WHERE (`mint`, `day`) IN (%s)", placeholders)

	args := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k.Mint, k.Day)
	}

	rows, err := wrappedQuery(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p := price.Price{}
		value := decimal.NullDecimal{}

		if err := rows.Scan(&p.Mint, &p.Day, &value); err != nil {
			return nil, err
		}

		if value.Valid {
			v := value.Decimal
			p.Value = &v
		}

		result[p.Key()] = &p
	}

	return result, rows.Err()
}

// InsertPrices stores freshly fetched price rows, explicit unknowns
// included. Rows are write once per (mint, day); concurrent inserts
// of the same key are silently ignored.
func InsertPrices(prices []*price.Price) error {
	if len(prices) == 0 {
		return nil
	}

	return transact(func(dbTx *sql.Tx) error {
		const query = "INSERT IGNORE INTO `prices_daily` (`mint`, `day`, `price`) VALUES (?, ?, ?)"

		for _, p := range prices {
			value := decimal.NullDecimal{}
			if p.Value != nil {
				value.Valid = true
				value.Decimal = *p.Value
			}

			if _, err := dbTx.Exec(query, p.Mint, p.Day, value); err != nil {
				return err
			}
		}

		return nil
	})
}
