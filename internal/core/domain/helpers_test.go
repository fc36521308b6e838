package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newBoundWallet creates an initialized wallet and the keypair that owns it.
func newBoundWallet(t *testing.T, id Id) (*Wallet, *Key) {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	w := NewWallet()
	require.NoError(t, w.Init(id, key))
	return w, key
}

// pay debits payer and returns the matching credit for the payee's ledger.
func pay(t *testing.T, payer *Wallet, payerKey *Key, payee *Wallet, zld string) Transaction {
	t.Helper()
	debit, err := payer.Debit(MustParseZLD(zld), payee.Invoice(), payerKey, "test payment")
	require.NoError(t, err)
	return debit.Mirror(payer.ID())
}

func sumOf(txns []Transaction) Amount {
	total := Zero
	for _, tx := range txns {
		total = total.Add(tx.Amount)
	}
	return total
}

func serialized(t *testing.T, w *Wallet) string {
	t.Helper()
	data, err := w.Serialize()
	require.NoError(t, err)
	return string(data)
}
