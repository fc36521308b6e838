package domain

import (
	"fmt"
	"strings"
)

// Invoice tells a payer where to send money: the payee id and the prefix of
// the payee's public key. Rendered as "prefix@id".
type Invoice struct {
	Prefix string
	ID     Id
}

// NewInvoice builds an invoice for the wallet id bound to key.
func NewInvoice(id Id, key *Key) Invoice {
	return Invoice{Prefix: key.Prefix(), ID: id}
}

// ParseInvoice parses "prefix@id".
func ParseInvoice(s string) (Invoice, error) {
	prefix, rawID, ok := strings.Cut(s, "@")
	if !ok || len(prefix) != prefixLen {
		return Invoice{}, fmt.Errorf("invalid invoice %q: expected <prefix>@<id>", s)
	}
	for _, c := range prefix {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return Invoice{}, fmt.Errorf("invalid invoice %q: prefix is not hex", s)
		}
	}
	id, err := ParseId(rawID)
	if err != nil {
		return Invoice{}, fmt.Errorf("invalid invoice %q: %w", s, err)
	}
	return Invoice{Prefix: prefix, ID: id}, nil
}

func (i Invoice) String() string {
	return i.Prefix + "@" + i.ID.String()
}
