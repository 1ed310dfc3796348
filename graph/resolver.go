package graph

import "solgraph/tx"

// holding is the identity of one secondary account: the asset it
// holds and the owner it holds it for.
type holding struct {
	mint  string
	owner string
}

// resolver maps secondary account addresses to their (mint, owner)
// identity, built fresh per transaction from the balance snapshots.
// Pre balance entries win over post balance entries: they reflect the
// account before the instructions moved funds, which is what
// instruction decoding needs.
type resolver struct {
	accounts map[string]holding
}

func newResolver(t *tx.Transaction) (*resolver, error) {
	r := &resolver{accounts: make(map[string]holding)}

	for _, balance := range t.PreTokenBalances {
		address, err := accountAt(t, balance.AccountIndex)
		if err != nil {
			return nil, err
		}
		r.accounts[address] = holding{mint: balance.Mint, owner: balance.Owner}
	}

	for _, balance := range t.PostTokenBalances {
		address, err := accountAt(t, balance.AccountIndex)
		if err != nil {
			return nil, err
		}
		r.register(address, balance.Mint, balance.Owner)
	}

	return r, nil
}

// register records a secondary account's identity if it is not
// already known. Earlier sources take precedence.
func (r *resolver) register(address, mint, owner string) {
	if _, ok := r.accounts[address]; ok {
		return
	}
	r.accounts[address] = holding{mint: mint, owner: owner}
}

// mint resolves the asset held by a secondary account. An unknown
// address is a shape mismatch in the input, never a soft miss.
func (r *resolver) mint(address string) (string, error) {
	h, ok := r.accounts[address]
	if !ok {
		return "", malformedf("no known mint for account %s", address)
	}
	return h.mint, nil
}

// owner resolves the owner of a secondary account.
func (r *resolver) owner(address string) (string, error) {
	h, ok := r.accounts[address]
	if !ok {
		return "", malformedf("no known owner for account %s", address)
	}
	return h.owner, nil
}

func accountAt(t *tx.Transaction, index int) (string, error) {
	if index < 0 || index >= len(t.Accounts) {
		return "", malformedf("balance snapshot references account index %d of %d", index, len(t.Accounts))
	}
	return t.Accounts[index], nil
}
