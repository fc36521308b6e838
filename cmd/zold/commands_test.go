package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"zold-node/internal/adapter/http/handler"
	"zold-node/internal/adapter/storage/memory"
	"zold-node/internal/core/domain"
	"zold-node/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against dir and node and returns stdout.
func run(t *testing.T, dir, node string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	argv := append([]string{"zold", "--home", dir, "--node", node}, args...)
	err := app.Run(argv)
	return out.String(), err
}

func keyPair(t *testing.T, dir, name string) (priv, pub string) {
	t.Helper()
	priv = filepath.Join(dir, name+".pem")
	pub = filepath.Join(dir, name+".pub")
	_, err := run(t, dir, "", "keygen", priv, pub)
	require.NoError(t, err)
	return priv, pub
}

func TestCLI_PayBetweenLocalWallets(t *testing.T) {
	dir := t.TempDir()
	rootPriv, rootPub := keyPair(t, dir, "root")
	_, bobPub := keyPair(t, dir, "bob")

	_, err := run(t, dir, "", "init", "--key", rootPub, "--id", "0000000000000000")
	require.NoError(t, err)
	out, err := run(t, dir, "", "init", "--key", bobPub, "--id", "000000000000000b")
	require.NoError(t, err)
	assert.Equal(t, "000000000000000b\n", out)

	invoice, err := run(t, dir, "", "invoice", "000000000000000b")
	require.NoError(t, err)
	invoice = strings.TrimSpace(invoice)
	assert.True(t, strings.HasSuffix(invoice, "@000000000000000b"))

	out, err = run(t, dir, "", "pay", "--key", rootPriv, "--details", "pizza", "0000000000000000", invoice, "39.99")
	require.NoError(t, err)
	assert.Contains(t, out, "Credited local wallet 000000000000000b")

	out, err = run(t, dir, "", "balance", "0000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "-39.99 ZLD\n", out)

	out, err = run(t, dir, "", "balance", "000000000000000b")
	require.NoError(t, err)
	assert.Equal(t, "39.99 ZLD\n", out)

	out, err = run(t, dir, "", "show", "000000000000000b")
	require.NoError(t, err)
	assert.Contains(t, out, `"pizza"`)

	out, err = run(t, dir, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0000000000000000 -39.99 ZLD, 1 transactions")
}

func TestCLI_InitTwiceFails(t *testing.T) {
	dir := t.TempDir()
	_, pub := keyPair(t, dir, "k")

	_, err := run(t, dir, "", "init", "--key", pub, "--id", "00000000000000aa")
	require.NoError(t, err)
	_, err = run(t, dir, "", "init", "--key", pub, "--id", "00000000000000aa")
	assert.ErrorIs(t, err, domain.ErrAlreadyInitialized)
}

func TestCLI_PayWithWrongKey(t *testing.T) {
	dir := t.TempDir()
	_, rootPub := keyPair(t, dir, "root")
	otherPriv, _ := keyPair(t, dir, "other")

	_, err := run(t, dir, "", "init", "--key", rootPub, "--id", "0000000000000000")
	require.NoError(t, err)

	_, err = run(t, dir, "", "pay", "--key", otherPriv, "0000000000000000", "0123456789abcdef@00000000000000aa", "1")
	assert.ErrorIs(t, err, domain.ErrKey)
}

func TestCLI_PushAndPull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ledger := service.NewLedgerService(memory.NewWalletRepo(), nil, nil, nil, service.LedgerConfig{}, zerolog.Nop())
	node := httptest.NewServer(handler.SetupRouter(handler.RouterDeps{Ledger: ledger, Logger: zerolog.Nop()}))
	defer node.Close()

	alice := t.TempDir()
	bob := t.TempDir()
	rootPriv, rootPub := keyPair(t, alice, "root")
	_, bobPub := keyPair(t, bob, "bob")

	_, err := run(t, alice, node.URL, "init", "--key", rootPub, "--id", "0000000000000000")
	require.NoError(t, err)
	_, err = run(t, bob, node.URL, "init", "--key", bobPub, "--id", "000000000000000b")
	require.NoError(t, err)
	invoice, err := run(t, bob, node.URL, "invoice", "000000000000000b")
	require.NoError(t, err)

	// Alice holds a copy of Bob's wallet so the credit lands locally.
	out, err := run(t, bob, node.URL, "push", "000000000000000b")
	require.NoError(t, err)
	assert.Contains(t, out, "000000000000000b")
	_, err = run(t, alice, node.URL, "pull", "000000000000000b")
	require.NoError(t, err)

	_, err = run(t, alice, node.URL, "pay", "--key", rootPriv, "0000000000000000", strings.TrimSpace(invoice), "5")
	require.NoError(t, err)
	_, err = run(t, alice, node.URL, "push", "0000000000000000")
	require.NoError(t, err)
	out, err = run(t, alice, node.URL, "push", "000000000000000b")
	require.NoError(t, err)
	assert.Contains(t, out, "1 accepted")

	out, err = run(t, bob, node.URL, "pull", "000000000000000b")
	require.NoError(t, err)
	assert.Contains(t, out, "1 new")

	out, err = run(t, bob, node.URL, "balance", "000000000000000b")
	require.NoError(t, err)
	assert.Equal(t, "5.00 ZLD\n", out)

	_, err = run(t, bob, node.URL, "pull", "ffffeeeeddddcccc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not know")
}
