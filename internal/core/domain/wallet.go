package domain

import (
	"fmt"
	"time"
)

// now is the clock used for locally originated debits.
var now = time.Now

// Wallet is the append-only ledger of one account.
type Wallet struct {
	id          Id
	key         *Key
	bound       bool
	txns        []Transaction
	balance     Amount
	maxDebitSeq uint64
	index       map[txIdentity]int // position in txns
	slots       map[txSlot]txIdentity
}

// NewWallet returns an empty, unbound wallet.
func NewWallet() *Wallet {
	return &Wallet{
		index: make(map[txIdentity]int),
		slots: make(map[txSlot]txIdentity),
	}
}

// Init binds the wallet to its id and public key. Only the public half of
// key is retained.
func (w *Wallet) Init(id Id, key *Key) error {
	if w.bound {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, w.id)
	}
	if key == nil || len(key.pub) == 0 {
		return fmt.Errorf("%w: wallet needs a public key", ErrKey)
	}
	w.id = id
	w.key = key.Public()
	w.bound = true
	return nil
}

func (w *Wallet) ID() Id              { return w.id }
func (w *Wallet) Key() *Key           { return w.key }
func (w *Wallet) Initialized() bool   { return w.bound }
func (w *Wallet) Balance() Amount     { return w.balance }
func (w *Wallet) Len() int            { return len(w.txns) }
func (w *Wallet) MaxDebitSeq() uint64 { return w.maxDebitSeq }
func (w *Wallet) Invoice() Invoice    { return NewInvoice(w.id, w.key) }

// Transactions returns a copy of the ledger in order.
func (w *Wallet) Transactions() []Transaction {
	out := make([]Transaction, len(w.txns))
	copy(out, w.txns)
	return out
}

// Contains reports whether tx is already in the ledger.
func (w *Wallet) Contains(tx Transaction) bool {
	_, ok := w.index[tx.identity()]
	return ok
}

// Backs reports whether the ledger holds the debit that credit, as recorded
// on payee's ledger, mirrors. Every signed field must match.
func (w *Wallet) Backs(credit Transaction, payee Id) bool {
	if !credit.IsCredit() || credit.Bnf != w.id {
		return false
	}
	want := credit.Mirror(payee)
	i, ok := w.index[want.identity()]
	if !ok {
		return false
	}
	debit := w.txns[i]
	return debit.IsDebit() &&
		debit.Amount == want.Amount &&
		debit.Time.Equal(want.Time) &&
		debit.Prefix == want.Prefix &&
		debit.Details == want.Details
}

// Append validates tx and adds it to the ledger. A transaction that is
// already present is ignored. On error the wallet is unchanged.
func (w *Wallet) Append(tx Transaction, payers PayerResolver) error {
	if w.bound && w.Contains(tx) {
		return nil
	}
	if err := Validate(w, tx, payers); err != nil {
		return err
	}
	w.push(tx)
	return nil
}

// Debit signs a payment of amount to the invoice with key and appends it.
func (w *Wallet) Debit(amount Amount, to Invoice, key *Key, details string) (Transaction, error) {
	if !w.bound {
		return Transaction{}, ErrNotInitialized
	}
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: payment amount must be positive, got %s", ErrInvalidTransaction, amount)
	}
	if !key.HasPrivate() {
		return Transaction{}, fmt.Errorf("%w: private key is absent", ErrKey)
	}
	if !key.Equal(w.key) {
		return Transaction{}, fmt.Errorf("%w: key does not belong to wallet %s", ErrKey, w.id)
	}

	tx := Transaction{
		Seq:     w.maxDebitSeq + 1,
		Time:    now().UTC().Truncate(time.Millisecond),
		Amount:  amount.Neg(),
		Prefix:  to.Prefix,
		Bnf:     to.ID,
		Details: details,
	}
	sig, err := key.Sign(tx.SigningPayload(w.id))
	if err != nil {
		return Transaction{}, err
	}
	tx.Signature = sig

	if err := w.Append(tx, nil); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// push records tx without validation.
func (w *Wallet) push(tx Transaction) {
	w.txns = append(w.txns, tx)
	w.balance = w.balance.Add(tx.Amount)
	w.index[tx.identity()] = len(w.txns) - 1
	if tx.IsDebit() && tx.Seq > w.maxDebitSeq {
		w.maxDebitSeq = tx.Seq
	}
	if _, held := w.slots[tx.slot()]; !held {
		w.slots[tx.slot()] = tx.identity()
	}
}
