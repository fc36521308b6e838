package domain

import (
	"bytes"
	"fmt"
	"time"
)

// maxDetailsLen bounds the free-text purpose of a payment.
const maxDetailsLen = 512

// Transaction is one signed ledger entry as seen from the owning wallet.
// A negative amount debits the owner and is signed by the owner; a positive
// amount credits the owner and carries the payer's signature.
type Transaction struct {
	Seq       uint64    `json:"id"`
	Time      time.Time `json:"time"`
	Amount    Amount    `json:"amount"`
	Prefix    string    `json:"prefix"` // payee key prefix
	Bnf       Id        `json:"bnf"`    // counterparty
	Details   string    `json:"details"`
	Signature []byte    `json:"signature"`
}

// txIdentity is the dedupe key: two entries with the same identity are the
// same transaction.
type txIdentity struct {
	bnf Id
	seq uint64
	sig string
}

// txSlot is the position a transaction occupies in its payer's sequence.
type txSlot struct {
	credit bool
	bnf    Id
	seq    uint64
}

func (t Transaction) IsDebit() bool  { return t.Amount.IsNegative() }
func (t Transaction) IsCredit() bool { return t.Amount.IsPositive() }

func (t Transaction) identity() txIdentity {
	return txIdentity{bnf: t.Bnf, seq: t.Seq, sig: string(t.Signature)}
}

func (t Transaction) slot() txSlot {
	if t.IsDebit() {
		return txSlot{seq: t.Seq}
	}
	return txSlot{credit: true, bnf: t.Bnf, seq: t.Seq}
}

// Payer returns the wallet that signed the transaction.
func (t Transaction) Payer(owner Id) Id {
	if t.IsDebit() {
		return owner
	}
	return t.Bnf
}

// Payee returns the wallet that received the money.
func (t Transaction) Payee(owner Id) Id {
	if t.IsDebit() {
		return t.Bnf
	}
	return owner
}

// SigningPayload is the canonical byte encoding covered by the signature.
// It is built from the payer's point of view, so the debit on the payer's
// ledger and the credit on the payee's ledger share one payload.
// Format: PAYER|SEQ|TIME|AMOUNT|PREFIX|PAYEE|DETAILS
func (t Transaction) SigningPayload(owner Id) []byte {
	return fmt.Appendf(nil, "%s|%d|%s|%d|%s|%s|%s",
		t.Payer(owner),
		t.Seq,
		t.Time.UTC().Format(time.RFC3339Nano),
		t.Amount.Abs().Zents(),
		t.Prefix,
		t.Payee(owner),
		t.Details,
	)
}

// Mirror returns the counterparty's view of the transaction: a debit on the
// payer's ledger becomes a credit on the payee's ledger and vice versa.
func (t Transaction) Mirror(owner Id) Transaction {
	m := t
	m.Amount = t.Amount.Neg()
	m.Bnf = owner
	m.Signature = bytes.Clone(t.Signature)
	return m
}

// less orders transactions for ledger replay: credits first by time then
// signature, debits after them by sequence then signature.
func less(a, b Transaction) bool {
	if a.IsCredit() != b.IsCredit() {
		return a.IsCredit()
	}
	if a.IsCredit() {
		if !a.Time.Equal(b.Time) {
			return a.Time.Before(b.Time)
		}
		if c := bytes.Compare(a.Signature, b.Signature); c != 0 {
			return c < 0
		}
		if a.Bnf != b.Bnf {
			return a.Bnf < b.Bnf
		}
		return a.Seq < b.Seq
	}
	if a.Seq != b.Seq {
		return a.Seq < b.Seq
	}
	return bytes.Compare(a.Signature, b.Signature) < 0
}
