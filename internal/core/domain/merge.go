package domain

import (
	"fmt"
	"sort"
)

// Rejection records a remote transaction that Merge refused.
type Rejection struct {
	Transaction Transaction
	Err         error
}

// MergeReport lists what a merge added to the local ledger and what it
// refused.
type MergeReport struct {
	Added    []Transaction
	Rejected []Rejection
}

// Changed reports whether the merge produced new history.
func (r *MergeReport) Changed() bool {
	return len(r.Added) > 0
}

type mergeCandidate struct {
	tx      Transaction
	trusted bool
}

// Merge reconciles the local ledger with a remote copy of the same wallet and
// returns a new wallet. Neither input is modified.
//
// Local history is kept as is. Remote entries are deduplicated against it,
// then everything is replayed in canonical order (credits by time, then
// debits by sequence) and each remote entry must pass Validate against the
// ledger built so far. Remote credits are checked against the payer ledgers
// that payers resolves. The result depends only on the set of transactions,
// so nodes that see the same set converge on the same ledger.
func Merge(local, remote *Wallet, payers PayerResolver) (*Wallet, *MergeReport, error) {
	if !local.bound || !remote.bound {
		return nil, nil, ErrNotInitialized
	}
	if local.id != remote.id {
		return nil, nil, fmt.Errorf("%w: wallet %s cannot merge %s", ErrIdentityMismatch, local.id, remote.id)
	}
	if !local.key.Equal(remote.key) {
		return nil, nil, fmt.Errorf("%w: wallet %s is bound to a different key", ErrIdentityMismatch, local.id)
	}

	report := &MergeReport{}
	seen := make(map[txIdentity]struct{}, len(local.txns)+len(remote.txns))
	held := make(map[txSlot]struct{}, len(local.txns))
	candidates := make([]mergeCandidate, 0, len(local.txns)+len(remote.txns))

	for _, tx := range local.txns {
		seen[tx.identity()] = struct{}{}
		held[tx.slot()] = struct{}{}
		candidates = append(candidates, mergeCandidate{tx: tx, trusted: true})
	}
	for _, tx := range remote.txns {
		if _, dup := seen[tx.identity()]; dup {
			continue
		}
		seen[tx.identity()] = struct{}{}
		if _, taken := held[tx.slot()]; taken {
			report.Rejected = append(report.Rejected, Rejection{
				Transaction: tx,
				Err:         fmt.Errorf("%w: seq %d with %s conflicts with confirmed history", ErrSequence, tx.Seq, tx.Bnf),
			})
			continue
		}
		candidates = append(candidates, mergeCandidate{tx: tx})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return less(candidates[i].tx, candidates[j].tx)
	})

	merged := NewWallet()
	if err := merged.Init(local.id, local.key); err != nil {
		return nil, nil, err
	}
	for _, c := range candidates {
		if c.trusted {
			merged.push(c.tx)
			continue
		}
		if err := merged.Append(c.tx, payers); err != nil {
			report.Rejected = append(report.Rejected, Rejection{Transaction: c.tx, Err: err})
			continue
		}
		report.Added = append(report.Added, c.tx)
	}
	return merged, report, nil
}
