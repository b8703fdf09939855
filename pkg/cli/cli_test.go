package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/dnetmap/pkg/config"
)

const accountDnet = `DESC:account
CMODULE:login
C2GS:
1:ReqLogin:login request
2:ReqLogout:logout
GS2C:
1:RspLogin:login result
2:RspHeroes:hero list
3:RspBag:bag contents
`

const kickDnet = `C2SMODULE:gm
C2S.
1.C2SKick.kick player
S2C.
1.S2CKick.kicked
`

type harness struct {
	root    *Command
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	proto   string
	configs string
	cfg     *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
		proto:   filepath.Join(dir, "proto"),
		configs: filepath.Join(dir, "clientconfig"),
	}
	writeFile(t, h.proto, "login/account.dnet", accountDnet)
	writeFile(t, h.proto, "gm/kick.proto-def", kickDnet)

	h.cfg = config.DefaultConfig()
	h.cfg.ProtoDir = h.proto
	h.cfg.Storage.Dir = h.configs
	h.cfg.Observability.LogLevel = "error"

	h.root = newRootCommand(&App{
		Out: h.out,
		Err: h.errOut,
		LoadConfig: func() (*config.Config, error) {
			cfg := *h.cfg
			return &cfg, nil
		},
	})
	return h
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	h.out.Reset()
	err := h.root.ExecuteArgs(args)
	return h.out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	assert.Equal(t, "dnetmap", root.Name)
	expected := []string{"scan", "show", "config", "init", "export", "import",
		"add", "remove", "move", "group", "trigger", "validate", "watch"}
	for _, name := range expected {
		assert.Contains(t, root.Subcommands, name)
		assert.NotNil(t, root.Subcommands[name].Flags)
	}
	assert.Len(t, root.Subcommands, len(expected))
}

func TestCommandUsage(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage: dnetmap <command> [args]")
	assert.Contains(t, out, "validate")
	assert.Less(t, bytes.Index([]byte(out), []byte("  add")), bytes.Index([]byte(out), []byte("  watch")), "sorted")

	_, err = h.run(t, "frobnicate")
	assert.EqualError(t, err, "unknown command: frobnicate")

	_, err = h.run(t, "scan", "-h")
	assert.NoError(t, err)
}

func TestExecuteArgs_RecoversPanic(t *testing.T) {
	root := &Command{
		Name: "dnetmap",
		Subcommands: map[string]*Command{
			"boom": {Name: "boom", Run: func([]string) error { panic("kaboom") }},
		},
	}

	err := root.ExecuteArgs([]string{"boom"})

	assert.EqualError(t, err, "boom: panic: kaboom")
}

func TestScanCommand(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "scan")

	require.NoError(t, err)
	assert.Contains(t, out, "gm/kick.proto-def")
	assert.Contains(t, out, "login/account.dnet")
	assert.Contains(t, out, "legacy")
	assert.Contains(t, out, "Total: 2 files, 3 client messages, 4 server messages")

	out, err = h.run(t, "scan", "-filter", "kick")
	require.NoError(t, err)
	assert.NotContains(t, out, "account.dnet")
}

func TestEditCommands(t *testing.T) {
	h := newHarness(t)
	file := "login/account.dnet"

	_, err := h.run(t, "add", "-file", file, "-c2s", "ReqLogin", "-s2c", "RspLogin")
	require.NoError(t, err)
	_, err = h.run(t, "add", "-file", file, "-c2s", "ReqLogin", "-s2c", "RspHeroes", "-group", "A")
	require.NoError(t, err)
	out, err := h.run(t, "add", "-file", file, "-c2s", "ReqLogin", "-s2c", "RspBag", "-group", "A",
		"-conditional", "-condition", "bag unlocked", "-many", "-unordered")
	require.NoError(t, err)
	assert.Contains(t, out, "added RspBag as x[A]")

	out, err = h.run(t, "show", "-file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "1      RspLogin [unconditional, once]")
	assert.Contains(t, out, "2[A]   RspHeroes")
	assert.Contains(t, out, "x[A]   RspBag [conditional, many] when bag unlocked")
	assert.Contains(t, out, "Configured: 1 client messages, 3 responses, 0 triggers")

	out, err = h.run(t, "move", "-file", file, "-c2s", "ReqLogin", "-from", "0", "-to", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2      RspLogin")

	out, err = h.run(t, "group", "-file", file, "-c2s", "ReqLogin", "-name", "A", "-describe", "any order")
	require.NoError(t, err)
	assert.Contains(t, out, "group A: any order")

	_, err = h.run(t, "remove", "-file", file, "-c2s", "ReqLogin", "-index", "0")
	require.NoError(t, err)
	_, err = h.run(t, "remove", "-file", file, "-c2s", "ReqLogin", "-index", "9")
	assert.Error(t, err)

	t.Run("undeclared client message", func(t *testing.T) {
		_, err := h.run(t, "add", "-file", file, "-c2s", "ReqNope", "-s2c", "RspLogin")
		assert.ErrorContains(t, err, "not declared")
	})

	t.Run("unknown server message needs force", func(t *testing.T) {
		out, err := h.run(t, "add", "-file", file, "-c2s", "ReqLogout", "-s2c", "RspGhost")
		assert.ErrorContains(t, err, "rerun with -force")
		assert.Contains(t, out, "references unknown server message 'RspGhost'")

		_, err = h.run(t, "add", "-file", file, "-c2s", "ReqLogout", "-s2c", "RspGhost", "-force")
		require.NoError(t, err)
	})

	t.Run("module is taken from the owning file", func(t *testing.T) {
		_, err := h.run(t, "add", "-file", "gm/kick.proto-def", "-c2s", "C2SKick", "-s2c", "RspLogin")
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(h.configs, "gm", "kick.json"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"cmodule": "login"`)
	})
}

func TestShowCommand_SplitGroup(t *testing.T) {
	h := newHarness(t)
	file := "login/account.dnet"

	for _, args := range [][]string{
		{"-s2c", "RspLogin", "-group", "A"},
		{"-s2c", "RspHeroes"},
		{"-s2c", "RspBag", "-group", "A"},
	} {
		_, err := h.run(t, append([]string{"add", "-file", file, "-c2s", "ReqLogin"}, args...)...)
		require.NoError(t, err)
	}

	out, err := h.run(t, "show", "-file", file)
	require.NoError(t, err)

	login := strings.Index(out, "1[A]   RspLogin")
	heroes := strings.Index(out, "2      RspHeroes")
	bag := strings.Index(out, "3[A]   RspBag")
	require.True(t, login >= 0 && heroes >= 0 && bag >= 0, out)
	assert.Less(t, login, heroes)
	assert.Less(t, heroes, bag)
}

func TestTriggerCommand(t *testing.T) {
	h := newHarness(t)
	file := "login/account.dnet"

	_, err := h.run(t, "trigger", "-file", file, "-s2c", "RspHeroes", "-name", "hero unlocked", "-many")
	require.NoError(t, err)

	out, err := h.run(t, "show", "-file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "trigger: hero unlocked [unconditional, many]")

	_, err = h.run(t, "trigger", "-file", file, "-s2c", "RspHeroes")
	assert.ErrorContains(t, err, "-name is required")

	out, err = h.run(t, "trigger", "-file", file, "-s2c", "RspHeroes", "-remove", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing left to store")
	assert.NoFileExists(t, filepath.Join(h.configs, "login", "account.json"))
}

func TestInitCommand(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "init", "-file", "login/account.dnet")
	require.NoError(t, err)
	assert.Contains(t, out, `"ReqLogin"`)
	assert.Contains(t, out, `"dnet_file": "login/account.dnet"`)

	tmpl := filepath.Join(t.TempDir(), "account.yaml")
	out, err = h.run(t, "init", "-file", "login/account.dnet", "-out", tmpl)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote template for 2 client messages")
	assert.FileExists(t, tmpl)

	_, err = h.run(t, "add", "-file", "login/account.dnet", "-c2s", "ReqLogin", "-s2c", "RspLogin")
	require.NoError(t, err)
	_, err = h.run(t, "init", "-file", "login/account.dnet")
	assert.ErrorContains(t, err, "already configured")

	_, err = h.run(t, "init")
	assert.ErrorContains(t, err, "-file is required")
}

func TestExportImportCommands(t *testing.T) {
	h := newHarness(t)
	file := "login/account.dnet"
	dir := t.TempDir()

	_, err := h.run(t, "export", "-file", file, "-out", filepath.Join(dir, "x.json"))
	assert.ErrorContains(t, err, "no stored mapping")

	_, err = h.run(t, "add", "-file", file, "-c2s", "ReqLogin", "-s2c", "RspLogin")
	require.NoError(t, err)
	exported := filepath.Join(dir, "account.yaml")
	_, err = h.run(t, "export", "-file", file, "-out", exported)
	require.NoError(t, err)

	_, err = h.run(t, "import", "-in", exported, "-file", "gm/kick.proto-def")
	assert.ErrorContains(t, err, "rerun with -force", "ReqLogin is not declared by kick.proto-def")

	out, err := h.run(t, "import", "-in", exported, "-file", "gm/kick.proto-def", "-force")
	require.NoError(t, err)
	assert.Contains(t, out, "not present in kick.proto-def")
	assert.FileExists(t, filepath.Join(h.configs, "gm", "kick.json"))
}

func TestValidateCommand(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "All stored mappings are valid")

	out, err = h.run(t, "validate", "-file", "login/account.dnet")
	require.NoError(t, err)
	assert.Contains(t, out, "has no stored mapping")

	_, err = h.run(t, "add", "-file", "login/account.dnet", "-c2s", "ReqLogin", "-s2c", "RspLogin")
	require.NoError(t, err)
	out, err = h.run(t, "validate", "-file", "login/account.dnet")
	require.NoError(t, err)
	assert.Contains(t, out, "login/account.dnet is valid")

	// the server message disappears from the tree
	writeFile(t, h.proto, "login/account.dnet", "C2GS:\n1:ReqLogin:login\n")
	out, err = h.run(t, "validate")
	assert.ErrorIs(t, err, ErrWarnings)
	assert.Contains(t, out, "login/account.dnet: client message 'ReqLogin' references unknown server message 'RspLogin'")
}

func TestConfigCommand(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "config", "-proto", "elsewhere")

	require.NoError(t, err)
	assert.Contains(t, out, "proto_dir: elsewhere")
	assert.Contains(t, out, "dir: "+h.configs)
}

func TestMetricsFile(t *testing.T) {
	h := newHarness(t)
	h.cfg.Observability.MetricsFile = filepath.Join(t.TempDir(), "metrics.prom")

	_, err := h.run(t, "scan")
	require.NoError(t, err)

	data, err := os.ReadFile(h.cfg.Observability.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dnetmap_registry_files 2")
}
