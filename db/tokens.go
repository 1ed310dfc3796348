package db

import (
	"solgraph/asset"
)

// GetToken returns the cached asset row for mint, or nil when the
// mint has never been resolved.
func GetToken(mint string) (*asset.Asset, error) {
	const query = "SELECT `mint`, `ticker`, `decimals`, `img_url` FROM `tokens` WHERE `mint` = ?"
	rows, err := wrappedQuery(query, mint)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	a := asset.Asset{}
	if err := rows.Scan(&a.Mint, &a.Ticker, &a.Decimals, &a.Icon); err != nil {
		return nil, err
	}

	return &a, nil
}

// InsertToken stores a freshly resolved asset row. Rows are write
// once; a concurrent insert of the same mint is silently ignored.
func InsertToken(a *asset.Asset) error {
	const query = "INSERT IGNORE INTO `tokens` (`mint`, `ticker`, `decimals`, `img_url`) VALUES (?, ?, ?, ?)"
	return wrappedExec(query, a.Mint, a.Ticker, a.Decimals, a.Icon)
}
