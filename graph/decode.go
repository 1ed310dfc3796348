package graph

import (
	"encoding/json"
	"strconv"

	"solgraph/asset"
	"solgraph/tx"
)

const nativeMint = asset.NativeMint

type systemTransferInfo struct {
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	Lamports    *uint64 `json:"lamports"`
}

type createAccountInfo struct {
	Source     string  `json:"source"`
	NewAccount string  `json:"newAccount"`
	Owner      string  `json:"owner"`
	Lamports   *uint64 `json:"lamports"`
}

type delegateInfo struct {
	StakeAccount string `json:"stakeAccount"`
	VoteAccount  string `json:"voteAccount"`
}

type createIdempotentInfo struct {
	Account string `json:"account"`
	Mint    string `json:"mint"`
	Wallet  string `json:"wallet"`
}

type initializeAccountInfo struct {
	Account string `json:"account"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
}

type tokenTransferInfo struct {
	Source            string `json:"source"`
	Destination       string `json:"destination"`
	Authority         string `json:"authority"`
	MultisigAuthority string `json:"multisigAuthority"`
	Amount            string `json:"amount"`
	TokenAmount       *struct {
		Amount string `json:"amount"`
	} `json:"tokenAmount"`
}

func decodeInfo(ix tx.Instruction, target interface{}) error {
	if len(ix.Info) == 0 {
		return malformedf("%s instruction carries no info payload", ix.Type)
	}
	if err := json.Unmarshal(ix.Info, target); err != nil {
		return malformedf("bad %s info payload: %v", ix.Type, err)
	}
	return nil
}

// ownedInstruction pairs one parsed inner instruction with the program
// that was driving the inner list at that point. The raw list encodes
// that context as unparsed marker entries; the scan resolves it up
// front so transfer decoding does not track it.
type ownedInstruction struct {
	ix    tx.Instruction
	owner string
}

func scanInner(groups []tx.InnerGroup) []ownedInstruction {
	var out []ownedInstruction

	current := ""
	for _, group := range groups {
		for _, ix := range group.Instructions {
			if !ix.IsParsed() {
				current = ix.ProgramID
				continue
			}
			out = append(out, ownedInstruction{ix: ix, owner: current})
		}
	}

	return out
}

// decode walks the top level instructions, then the inner instruction
// scan, emitting provisional nodes and edges. Decoding is pure: any
// failure here means the input's shape is off, not that something
// remote misbehaved.
func (g *build) decode(t *tx.Transaction, r *resolver) error {
	for _, ix := range t.Instructions {
		if !ix.IsParsed() {
			continue
		}

		switch {
		case ix.Type == tx.TypeTransfer && ix.ProgramID == tx.SystemProgram:
			if err := g.nativeTransfer(t, ix); err != nil {
				return err
			}

		case ix.Type == tx.TypeCreateIdempotent && ix.ProgramID == tx.AssociatedTokenProgram:
			var info createIdempotentInfo
			if err := decodeInfo(ix, &info); err != nil {
				return err
			}
			if info.Account == "" || info.Mint == "" || info.Wallet == "" {
				return malformedf("createIdempotent missing account, mint or wallet")
			}
			r.register(info.Account, info.Mint, info.Wallet)

		case ix.Type == tx.TypeCreateAccount:
			if err := g.stakeAccountCreation(t, ix); err != nil {
				return err
			}

		case ix.Type == tx.TypeDelegate && ix.ProgramID == tx.StakeProgram:
			if err := g.delegation(t, ix); err != nil {
				return err
			}
		}
	}

	for _, oi := range scanInner(t.Inner) {
		ix := oi.ix

		switch {
		case ix.Type == tx.TypeInitializeAccount3 && ix.ProgramID == tx.TokenProgram:
			var info initializeAccountInfo
			if err := decodeInfo(ix, &info); err != nil {
				return err
			}
			if info.Account == "" || info.Mint == "" || info.Owner == "" {
				return malformedf("initializeAccount3 missing account, mint or owner")
			}
			r.register(info.Account, info.Mint, info.Owner)

		case (ix.Type == tx.TypeTransfer || ix.Type == tx.TypeTransferChecked) && ix.ProgramID == tx.TokenProgram:
			if err := g.tokenTransfer(t, r, ix, oi.owner); err != nil {
				return err
			}
		}
	}

	return nil
}

func (g *build) nativeTransfer(t *tx.Transaction, ix tx.Instruction) error {
	var info systemTransferInfo
	if err := decodeInfo(ix, &info); err != nil {
		return err
	}
	if info.Source == "" || info.Destination == "" || info.Lamports == nil {
		return malformedf("system transfer missing source, destination or lamports")
	}

	g.node(info.Source)
	g.node(info.Destination)

	g.addEdge(&Edge{
		Source:    info.Source,
		Target:    info.Destination,
		Kind:      KindTransfer,
		Mint:      nativeMint,
		RawAmount: *info.Lamports,
		TxID:      t.TxID,
		BlockTime: t.BlockTime,
	})

	wrapped, err := wrapsNative(t, info.Destination)
	if err != nil {
		return err
	}
	if wrapped {
		// The destination is being turned into the native asset's
		// token representation in the same transaction; surface the
		// wrap as an explicit reverse movement.
		g.node(info.Destination).Label = "Wrap SOL"
		g.addEdge(&Edge{
			Source:    info.Destination,
			Target:    info.Source,
			Kind:      KindTransfer,
			Mint:      nativeMint,
			RawAmount: *info.Lamports,
			TxID:      t.TxID,
			BlockTime: t.BlockTime,
			Tag:       "Wrap SOL",
		})
	}

	return nil
}

// wrapsNative reports whether any inner instruction initializes
// destination as a token account of the native mint.
func wrapsNative(t *tx.Transaction, destination string) (bool, error) {
	for _, group := range t.Inner {
		for _, ix := range group.Instructions {
			if ix.Type != tx.TypeInitializeAccount3 || ix.ProgramID != tx.TokenProgram {
				continue
			}

			var info initializeAccountInfo
			if err := decodeInfo(ix, &info); err != nil {
				return false, err
			}

			if info.Account == destination && asset.IsNative(info.Mint) {
				return true, nil
			}
		}
	}

	return false, nil
}

func (g *build) stakeAccountCreation(t *tx.Transaction, ix tx.Instruction) error {
	var info createAccountInfo
	if err := decodeInfo(ix, &info); err != nil {
		return err
	}

	// Account creation for anything but the staking program moves no
	// owner level value of interest.
	if info.Owner != tx.StakeProgram {
		return nil
	}

	if info.Source == "" || info.NewAccount == "" || info.Lamports == nil {
		return malformedf("createAccount missing source, newAccount or lamports")
	}

	g.node(info.Source)
	g.node(info.NewAccount)

	g.addEdge(&Edge{
		Source:    info.Source,
		Target:    info.NewAccount,
		Kind:      KindStake,
		Mint:      nativeMint,
		RawAmount: *info.Lamports,
		TxID:      t.TxID,
		BlockTime: t.BlockTime,
	})

	return nil
}

func (g *build) delegation(t *tx.Transaction, ix tx.Instruction) error {
	var info delegateInfo
	if err := decodeInfo(ix, &info); err != nil {
		return err
	}
	if info.StakeAccount == "" || info.VoteAccount == "" {
		return malformedf("delegate missing stakeAccount or voteAccount")
	}

	g.node(info.StakeAccount)
	g.node(info.VoteAccount)

	// Amount 1 is a unit marker for delegation, not a quantity;
	// enrichment leaves it alone.
	g.addEdge(&Edge{
		Source:    info.StakeAccount,
		Target:    info.VoteAccount,
		Kind:      KindDelegate,
		Mint:      nativeMint,
		RawAmount: 1,
		TxID:      t.TxID,
		BlockTime: t.BlockTime,
	})

	return nil
}

func (g *build) tokenTransfer(t *tx.Transaction, r *resolver, ix tx.Instruction, owningProgram string) error {
	var info tokenTransferInfo
	if err := decodeInfo(ix, &info); err != nil {
		return err
	}
	if info.Source == "" || info.Destination == "" {
		return malformedf("token transfer missing source or destination")
	}

	mint, err := r.mint(info.Source)
	if err != nil {
		return err
	}

	destOwner, err := r.owner(info.Destination)
	if err != nil {
		return err
	}

	// The signing authority is the source's owner. Some transfers
	// carry a multisig authority instead; failing both, fall back to
	// the resolver.
	sourceOwner := info.Authority
	if sourceOwner == "" {
		sourceOwner = info.MultisigAuthority
	}
	if sourceOwner == "" {
		sourceOwner, err = r.owner(info.Source)
		if err != nil {
			return err
		}
	}

	rawAmount, err := tokenAmount(info)
	if err != nil {
		return err
	}

	g.node(sourceOwner)
	g.node(destOwner)

	g.addEdge(&Edge{
		Source:    sourceOwner,
		Target:    destOwner,
		Kind:      KindTransfer,
		Mint:      mint,
		RawAmount: rawAmount,
		TxID:      t.TxID,
		BlockTime: t.BlockTime,
		ProgramID: owningProgram,
	})

	return nil
}

func tokenAmount(info tokenTransferInfo) (uint64, error) {
	raw := info.Amount
	if raw == "" && info.TokenAmount != nil {
		raw = info.TokenAmount.Amount
	}
	if raw == "" {
		return 0, malformedf("token transfer carries no amount")
	}

	amount, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, malformedf("bad token transfer amount %q: %v", raw, err)
	}

	return amount, nil
}
