package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Network is the only network name this node accepts.
const Network = "zold"

type walletDocument struct {
	Network      string        `json:"network"`
	ID           Id            `json:"id"`
	Key          string        `json:"key"`
	Transactions []Transaction `json:"transactions"`
}

// Serialize renders the wallet in its wire and storage form.
func (w *Wallet) Serialize() ([]byte, error) {
	if !w.bound {
		return nil, ErrNotInitialized
	}
	key, err := w.key.MarshalPublic()
	if err != nil {
		return nil, err
	}
	doc := walletDocument{
		Network:      Network,
		ID:           w.id,
		Key:          key,
		Transactions: w.Transactions(),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding wallet %s: %w", w.id, err)
	}
	return data, nil
}

// ParseWallet decodes a serialized wallet. Entries are checked for shape and
// uniqueness only; signatures and ledger rules are enforced by Merge.
//
// Only the canonical form is accepted: data must be exactly what Serialize
// produces for the decoded wallet.
func ParseWallet(data []byte) (*Wallet, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc walletDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after wallet", ErrMalformed)
	}
	if doc.Network != Network {
		return nil, fmt.Errorf("%w: network %q is not %q", ErrMalformed, doc.Network, Network)
	}

	key, err := ParsePublic(doc.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	w := NewWallet()
	if err := w.Init(doc.ID, key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	for i, tx := range doc.Transactions {
		if err := checkShape(w.id, tx); err != nil {
			return nil, fmt.Errorf("%w: transaction #%d: %v", ErrMalformed, i, err)
		}
		if w.Contains(tx) {
			return nil, fmt.Errorf("%w: transaction #%d is a duplicate", ErrMalformed, i)
		}
		w.push(tx)
	}

	canonical, err := w.Serialize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !bytes.Equal(canonical, data) {
		return nil, fmt.Errorf("%w: wallet is not in canonical form", ErrMalformed)
	}
	return w, nil
}
