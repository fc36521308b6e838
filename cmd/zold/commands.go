package main

import (
	"errors"
	"fmt"
	"os"

	"zold-node/internal/client"
	"zold-node/internal/core/domain"

	"github.com/urfave/cli/v2"
)

func idArg(c *cli.Context, pos int) (domain.Id, error) {
	if c.NArg() <= pos {
		return 0, fmt.Errorf("wallet id is required")
	}
	return domain.ParseId(c.Args().Get(pos))
}

func nodeClient(c *cli.Context) *client.Client {
	return client.NewClient(c.String("node"), nil, cliLogger(c))
}

func keygenCommand() *cli.Command {
	return &cli.Command{
		Name:      "keygen",
		Usage:     "Generate an ed25519 key pair",
		ArgsUsage: "PRIVATE_PEM PUBLIC_PEM",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("private and public key paths are required")
			}
			key, err := domain.GenerateKey()
			if err != nil {
				return err
			}
			priv, err := key.PrivatePEM()
			if err != nil {
				return err
			}
			pub, err := key.PublicPEM()
			if err != nil {
				return err
			}
			if err := os.WriteFile(c.Args().Get(0), priv, 0o600); err != nil {
				return err
			}
			if err := os.WriteFile(c.Args().Get(1), pub, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Key prefix: %s\n", key.Prefix())
			return nil
		},
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create an empty wallet bound to a public key",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "key",
				Usage:    "PEM file with the wallet's public (or private) key",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "id",
				Usage: "Wallet id (16 hex digits); random when omitted",
			},
		},
		Action: func(c *cli.Context) error {
			key, err := domain.LoadKey(c.String("key"))
			if err != nil {
				return err
			}
			id := domain.NewId()
			if s := c.String("id"); s != "" {
				if id, err = domain.ParseId(s); err != nil {
					return err
				}
			}

			h := homeOf(c)
			if h.exists(id) {
				return fmt.Errorf("%w: wallet %s already exists in %s", domain.ErrAlreadyInitialized, id, h.dir)
			}
			w := domain.NewWallet()
			if err := w.Init(id, key.Public()); err != nil {
				return err
			}
			if err := h.save(w); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, id)
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List local wallets with their balances",
		Action: func(c *cli.Context) error {
			h := homeOf(c)
			ids, err := h.list()
			if err != nil {
				return err
			}
			for _, id := range ids {
				w, err := h.load(id)
				if err != nil {
					fmt.Fprintf(c.App.Writer, "%s: %v\n", id, err)
					continue
				}
				fmt.Fprintf(c.App.Writer, "%s %s ZLD, %d transactions\n", id, w.Balance().ZLD(), w.Len())
			}
			return nil
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the ledger of a local wallet",
		ArgsUsage: "ID",
		Action: func(c *cli.Context) error {
			id, err := idArg(c, 0)
			if err != nil {
				return err
			}
			w, err := homeOf(c).load(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Wallet:  %s\n", w.ID())
			fmt.Fprintf(c.App.Writer, "Invoice: %s\n", w.Invoice())
			fmt.Fprintf(c.App.Writer, "Balance: %s ZLD\n", w.Balance().ZLD())
			for _, tx := range w.Transactions() {
				fmt.Fprintf(c.App.Writer, "#%d %s %s %s %s %q\n",
					tx.Seq, tx.Time.Format("2006-01-02T15:04:05.000Z"), tx.Amount.ZLD(), tx.Prefix, tx.Bnf, tx.Details)
			}
			return nil
		},
	}
}

func balanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "balance",
		Usage:     "Print the balance of a local wallet",
		ArgsUsage: "ID",
		Action: func(c *cli.Context) error {
			id, err := idArg(c, 0)
			if err != nil {
				return err
			}
			w, err := homeOf(c).load(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s ZLD\n", w.Balance().ZLD())
			return nil
		},
	}
}

func invoiceCommand() *cli.Command {
	return &cli.Command{
		Name:      "invoice",
		Usage:     "Print the invoice other wallets pay to",
		ArgsUsage: "ID",
		Action: func(c *cli.Context) error {
			id, err := idArg(c, 0)
			if err != nil {
				return err
			}
			w, err := homeOf(c).load(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, w.Invoice())
			return nil
		},
	}
}

func payCommand() *cli.Command {
	return &cli.Command{
		Name:      "pay",
		Usage:     "Debit a local wallet; the credit is added to the payee when it is local too",
		ArgsUsage: "FROM INVOICE AMOUNT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "key",
				Usage:    "PEM file with the payer's private key",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "details",
				Usage: "Payment details",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 3 {
				return fmt.Errorf("usage: zold pay FROM INVOICE AMOUNT")
			}
			from, err := idArg(c, 0)
			if err != nil {
				return err
			}
			invoice, err := domain.ParseInvoice(c.Args().Get(1))
			if err != nil {
				return err
			}
			amount, err := domain.ParseZLD(c.Args().Get(2))
			if err != nil {
				return err
			}
			key, err := domain.LoadKey(c.String("key"))
			if err != nil {
				return err
			}

			h := homeOf(c)
			payer, err := h.load(from)
			if err != nil {
				return err
			}
			debit, err := payer.Debit(amount, invoice, key, c.String("details"))
			if err != nil {
				return err
			}
			if err := h.save(payer); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Paid %s ZLD from %s to %s (seq %d)\n", amount.ZLD(), from, invoice, debit.Seq)

			if !h.exists(invoice.ID) {
				return nil
			}
			payee, err := h.load(invoice.ID)
			if err != nil {
				return err
			}
			if err := payee.Append(debit.Mirror(from), h); err != nil {
				return fmt.Errorf("crediting local wallet %s: %w", invoice.ID, err)
			}
			if err := h.save(payee); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Credited local wallet %s\n", invoice.ID)
			return nil
		},
	}
}

func pushCommand() *cli.Command {
	return &cli.Command{
		Name:      "push",
		Usage:     "Send a local wallet to the node",
		ArgsUsage: "ID",
		Action: func(c *cli.Context) error {
			id, err := idArg(c, 0)
			if err != nil {
				return err
			}
			w, err := homeOf(c).load(id)
			if err != nil {
				return err
			}
			result, err := nodeClient(c).Push(c.Context, w)
			if err != nil {
				return fmt.Errorf("failed to push %s: %w", id, err)
			}
			if result.Unchanged {
				fmt.Fprintf(c.App.Writer, "%s: node already had everything\n", id)
				return nil
			}
			fmt.Fprintf(c.App.Writer, "%s: %d accepted, %d rejected, %d transactions on node\n",
				id, result.Accepted, result.Rejected, result.Transactions)
			return nil
		},
	}
}

func pullCommand() *cli.Command {
	return &cli.Command{
		Name:      "pull",
		Usage:     "Fetch a wallet from the node and merge it into the local copy",
		ArgsUsage: "ID",
		Action: func(c *cli.Context) error {
			id, err := idArg(c, 0)
			if err != nil {
				return err
			}
			remote, err := nodeClient(c).Pull(c.Context, id)
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("node does not know wallet %s", id)
			}
			if err != nil {
				return fmt.Errorf("failed to pull %s: %w", id, err)
			}

			h := homeOf(c)
			if !h.exists(id) {
				if err := h.save(remote); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%s: saved, balance %s ZLD\n", id, remote.Balance().ZLD())
				return nil
			}

			local, err := h.load(id)
			if err != nil {
				return err
			}
			payers, err := payerLedgers(c, h, remote)
			if err != nil {
				return err
			}
			merged, report, err := domain.Merge(local, remote, payers)
			if err != nil {
				return err
			}
			if !report.Changed() {
				fmt.Fprintf(c.App.Writer, "%s: up to date\n", id)
				return nil
			}
			if err := h.save(merged); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s: %d new, %d rejected, balance %s ZLD\n",
				id, len(report.Added), len(report.Rejected), merged.Balance().ZLD())
			return nil
		},
	}
}

// payerLedgers resolves the ledger of every wallet that credited w. A local
// copy is used when it already holds the debit behind the credit; otherwise
// the node's copy is fetched.
func payerLedgers(c *cli.Context, h home, w *domain.Wallet) (domain.Ledgers, error) {
	payers := domain.Ledgers{}
	fetched := make(map[domain.Id]struct{})
	var cl *client.Client
	for _, tx := range w.Transactions() {
		if !tx.IsCredit() {
			continue
		}
		if _, ok := fetched[tx.Bnf]; ok {
			continue
		}
		if payer, ok := payers[tx.Bnf]; ok && payer.Backs(tx, w.ID()) {
			continue
		}
		if payer, ok := h.Payer(tx.Bnf); ok && payer.Backs(tx, w.ID()) {
			payers[tx.Bnf] = payer
			continue
		}
		if cl == nil {
			cl = nodeClient(c)
		}
		fetched[tx.Bnf] = struct{}{}
		payer, err := cl.Pull(c.Context, tx.Bnf)
		if errors.Is(err, client.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch payer %s: %w", tx.Bnf, err)
		}
		payers[tx.Bnf] = payer
	}
	return payers, nil
}
