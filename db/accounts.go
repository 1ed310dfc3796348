package db

import (
	"database/sql"
	"fmt"
	"strings"

	"solgraph/addr"
)

// GetAccounts returns cached account rows for the given addresses.
// Addresses without a row are simply absent from the result.
func GetAccounts(addresses []string) (map[string]*addr.Account, error) {
	result := make(map[string]*addr.Account)
	if len(addresses) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?, ", len(addresses))
	placeholders = placeholders[:len(placeholders)-2]

	query := fmt.Sprintf("SELECT `pubkey`, `label`, `tags`, `type`, `img_url` FROM `accounts` WHERE `pubkey` IN (%s)", placeholders)

	args := make([]interface{}, len(addresses))
	for i, address := range addresses {
		args[i] = address
	}

	rows, err := wrappedQuery(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a := addr.Account{}
		if err := rows.Scan(&a.Address, &a.Label, &a.Tags, &a.Type, &a.Icon); err != nil {
			return nil, err
		}
		result[a.Address] = &a
	}

	return result, rows.Err()
}

// InsertAccounts stores freshly resolved account rows. Rows are write
// once; concurrent inserts of the same address are silently ignored.
func InsertAccounts(accounts []*addr.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	return transact(func(dbTx *sql.Tx) error {
		const query = "INSERT IGNORE INTO `accounts` (`pubkey`, `label`, `tags`, `type`, `img_url`) VALUES (?, ?, ?, ?, ?)"

		for _, a := range accounts {
			if _, err := dbTx.Exec(query, a.Address, a.Label, a.Tags, a.Type, a.Icon); err != nil {
				return err
			}
		}

		return nil
	})
}
