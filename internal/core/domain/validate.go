package domain

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// PayerResolver looks up the ledger of another wallet. Credits are signed by
// the paying wallet and must be backed by a debit on its ledger.
type PayerResolver interface {
	Payer(id Id) (*Wallet, bool)
}

// Ledgers is a static PayerResolver.
type Ledgers map[Id]*Wallet

func (l Ledgers) Payer(id Id) (*Wallet, bool) {
	w, ok := l[id]
	return w, ok && w != nil && w.bound
}

// Validate checks whether tx may be appended to w. It never modifies w.
//
// A credit passes only when the payer's ledger, as resolved by payers, holds
// the matching debit. That debit was validated on the payer's side, so money
// is never credited without being spent first.
func Validate(w *Wallet, tx Transaction, payers PayerResolver) error {
	if !w.bound {
		return ErrNotInitialized
	}
	if err := checkShape(w.id, tx); err != nil {
		return err
	}
	var payer *Wallet
	if tx.IsCredit() {
		var ok bool
		if payers != nil {
			payer, ok = payers.Payer(tx.Bnf)
		}
		if !ok {
			return fmt.Errorf("%w: ledger of payer %s is unknown", ErrSignature, tx.Bnf)
		}
	}
	if err := verifySignature(w, tx, payer); err != nil {
		return err
	}
	if err := checkLedger(w, tx); err != nil {
		return err
	}
	if payer != nil && !payer.Backs(tx, w.id) {
		return fmt.Errorf("%w: payer %s has no debit seq %d to %s", ErrSignature, tx.Bnf, tx.Seq, w.id)
	}
	return nil
}

// checkShape rejects entries that cannot be valid on any ledger of owner.
func checkShape(owner Id, tx Transaction) error {
	switch {
	case tx.Amount.IsZero():
		return fmt.Errorf("%w: zero amount", ErrInvalidTransaction)
	case tx.Amount.Zents() == math.MinInt64:
		return fmt.Errorf("%w: amount out of range", ErrInvalidTransaction)
	case tx.Seq == 0:
		return fmt.Errorf("%w: sequence numbers start at 1", ErrInvalidTransaction)
	case tx.Bnf == owner:
		return fmt.Errorf("%w: wallet %s cannot pay itself", ErrInvalidTransaction, owner)
	case tx.Time.IsZero():
		return fmt.Errorf("%w: missing time", ErrInvalidTransaction)
	case len(tx.Details) > maxDetailsLen || !utf8.ValidString(tx.Details):
		return fmt.Errorf("%w: details must be UTF-8 and at most %d bytes", ErrInvalidTransaction, maxDetailsLen)
	case len(tx.Signature) == 0:
		return fmt.Errorf("%w: seq %d is not signed", ErrSignature, tx.Seq)
	}
	if len(tx.Prefix) != prefixLen {
		return fmt.Errorf("%w: key prefix must be %d hex digits", ErrInvalidTransaction, prefixLen)
	}
	if tx.Time.Nanosecond()%int(time.Millisecond) != 0 {
		return fmt.Errorf("%w: time must have millisecond precision", ErrInvalidTransaction)
	}
	return nil
}

func verifySignature(w *Wallet, tx Transaction, payer *Wallet) error {
	signer := w.key
	if tx.IsCredit() {
		if tx.Prefix != w.key.Prefix() {
			return fmt.Errorf("%w: credit seq %d from %s is bound to key %s, not this wallet", ErrSignature, tx.Seq, tx.Bnf, tx.Prefix)
		}
		signer = payer.key
	}
	if !signer.Verify(tx.SigningPayload(w.id), tx.Signature) {
		return fmt.Errorf("%w: seq %d with %s does not verify", ErrSignature, tx.Seq, tx.Bnf)
	}
	return nil
}

func checkLedger(w *Wallet, tx Transaction) error {
	if tx.IsCredit() {
		if held, ok := w.slots[tx.slot()]; ok && held != tx.identity() {
			return fmt.Errorf("%w: payer %s already spent seq %d here", ErrSequence, tx.Bnf, tx.Seq)
		}
		if _, ok := w.balance.CheckedAdd(tx.Amount); !ok {
			return fmt.Errorf("%w: credit of %s overflows balance %s", ErrBalance, tx.Amount, w.balance)
		}
		return nil
	}

	if want := w.maxDebitSeq + 1; tx.Seq != want {
		return fmt.Errorf("%w: expected debit seq %d, got %d", ErrSequence, want, tx.Seq)
	}
	next, ok := w.balance.CheckedAdd(tx.Amount)
	if !ok {
		return fmt.Errorf("%w: debit of %s overflows balance %s", ErrBalance, tx.Amount.Abs(), w.balance)
	}
	if !w.id.IsRoot() && next.IsNegative() {
		return fmt.Errorf("%w: debit of %s exceeds balance %s", ErrBalance, tx.Amount.Abs(), w.balance)
	}
	return nil
}
