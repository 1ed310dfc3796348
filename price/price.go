package price

import "github.com/shopspring/decimal"

// Key identifies one daily price row: a mint plus a
// calendar day in 'YYYYMMDD' form.
type Key struct {
	Mint string
	Day  string
}

// Price db model. A nil Value is itself meaningful: the day was
// queried upstream and no price exists, and that outcome is cached
// so the remote provider is not asked again.
// Rows are write-once per (mint, day).
type Price struct {
	Mint  string
	Day   string
	Value *decimal.Decimal
}

// Key returns the row's lookup key.
func (p *Price) Key() Key {
	return Key{Mint: p.Mint, Day: p.Day}
}

// Unknown builds an explicit "no price exists" row.
func Unknown(mint, day string) *Price {
	return &Price{Mint: mint, Day: day}
}
