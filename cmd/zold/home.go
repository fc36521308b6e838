package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"zold-node/internal/core/domain"
)

const walletExt = ".json"

// home is a local directory of wallet files named <id>.json.
type home struct {
	dir string
}

func (h home) path(id domain.Id) string {
	return filepath.Join(h.dir, id.String()+walletExt)
}

func (h home) exists(id domain.Id) bool {
	_, err := os.Stat(h.path(id))
	return err == nil
}

func (h home) load(id domain.Id) (*domain.Wallet, error) {
	data, err := os.ReadFile(h.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("wallet %s is not in %s", id, h.dir)
	}
	if err != nil {
		return nil, err
	}
	w, err := domain.ParseWallet(data)
	if err != nil {
		return nil, fmt.Errorf("wallet file %s: %w", h.path(id), err)
	}
	if w.ID() != id {
		return nil, fmt.Errorf("%w: file %s holds wallet %s", domain.ErrIdentityMismatch, h.path(id), w.ID())
	}
	return w, nil
}

// save writes the wallet through a temp file so a crash never leaves a
// half-written ledger behind.
func (h home) save(w *domain.Wallet) error {
	data, err := w.Serialize()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(h.dir, "."+w.ID().String()+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), h.path(w.ID()))
}

func (h home) list() ([]domain.Id, error) {
	entries, err := os.ReadDir(h.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []domain.Id
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, walletExt) {
			continue
		}
		id, err := domain.ParseId(strings.TrimSuffix(name, walletExt))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Payer resolves payer ledgers from the wallets stored in the directory.
func (h home) Payer(id domain.Id) (*domain.Wallet, bool) {
	w, err := h.load(id)
	if err != nil {
		return nil, false
	}
	return w, true
}
