package domain

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
)

// Id identifies a wallet. Its canonical text form is 16 lowercase hex digits.
type Id uint64

// Root is the network treasury wallet.
const Root Id = 0

// minRandomId keeps freshly drawn ids out of the reserved low range.
const minRandomId = uint64(1) << 32

// NewId draws a random wallet id from [2^32, 2^64).
func NewId() Id {
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			panic(fmt.Sprintf("reading random id: %v", err))
		}
		if v := binary.BigEndian.Uint64(buf[:]); v >= minRandomId {
			return Id(v)
		}
	}
}

// ParseId parses the canonical 16-digit form.
func ParseId(s string) (Id, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("invalid wallet id %q: expected 16 hex digits", s)
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return 0, fmt.Errorf("invalid wallet id %q: not lowercase hex", s)
		}
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid wallet id %q: %w", s, err)
	}
	return Id(v), nil
}

// MustParseId is ParseId for constants and tests.
func MustParseId(s string) Id {
	id, err := ParseId(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (i Id) String() string {
	return fmt.Sprintf("%016x", uint64(i))
}

func (i Id) IsRoot() bool {
	return i == Root
}

func (i Id) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Id) UnmarshalText(text []byte) error {
	id, err := ParseId(string(text))
	if err != nil {
		return err
	}
	*i = id
	return nil
}
