package graph

import "solgraph/tx"

// LamportsPerSignature is the fixed base fee charged per signature.
const LamportsPerSignature = 5000

// addFees synthesizes the implicit fee edges. The base fee is split
// exactly in half between the Burn and Validator sinks; whatever the
// declared fee carries beyond the base fee is a priority fee paid to
// the validator. Both sentinel nodes are always created, whether or
// not dedup lets their edges through.
func (g *build) addFees(t *tx.Transaction) error {
	if len(t.Accounts) == 0 {
		return malformedf("transaction has no account keys")
	}

	baseFee := uint64(t.Signatures) * LamportsPerSignature
	if t.Fee < baseFee {
		return malformedf("declared fee %d below base fee %d for %d signatures", t.Fee, baseFee, t.Signatures)
	}
	priorityFee := t.Fee - baseFee

	feePayer := t.Accounts[0]
	g.node(feePayer).Label = "Fee Payer"
	g.node(BurnNode).Label = "Burn"
	g.node(ValidatorNode).Label = "Validator"

	g.addEdge(&Edge{
		Source:    feePayer,
		Target:    BurnNode,
		Kind:      KindFee,
		Mint:      nativeMint,
		RawAmount: baseFee / 2,
		TxID:      t.TxID,
		BlockTime: t.BlockTime,
		Tag:       "Base Fee",
	})

	g.addEdge(&Edge{
		Source:    feePayer,
		Target:    ValidatorNode,
		Kind:      KindFee,
		Mint:      nativeMint,
		RawAmount: baseFee / 2,
		TxID:      t.TxID,
		BlockTime: t.BlockTime,
		Tag:       "Base Fee",
	})

	if priorityFee > 0 {
		g.addEdge(&Edge{
			Source:    feePayer,
			Target:    ValidatorNode,
			Kind:      KindFee,
			Mint:      nativeMint,
			RawAmount: priorityFee,
			TxID:      t.TxID,
			BlockTime: t.BlockTime,
			Tag:       "Priority Fee",
		})
	}

	return nil
}
