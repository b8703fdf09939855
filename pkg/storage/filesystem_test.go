package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/dnetmap/pkg/codec"
	"github.com/platinummonkey/dnetmap/pkg/mapping"
	"github.com/platinummonkey/dnetmap/pkg/observability"
)

func newTestStore(t *testing.T, cfg Config) *FileSystemStore {
	t.Helper()
	if cfg.Root == "" {
		cfg.Root = filepath.Join(t.TempDir(), "clientconfig")
	}
	s, err := NewFileSystemStore(cfg, observability.DiscardLogger())
	require.NoError(t, err)
	return s
}

func loginDocument() *mapping.Document {
	doc := mapping.NewDocument("login/account.dnet", "account")
	doc.EnsureMapping("ReqLogin", "login").Append(mapping.NewResponse("RspLogin"))
	return doc
}

func TestNewFileSystemStore(t *testing.T) {
	t.Run("requires a root", func(t *testing.T) {
		_, err := NewFileSystemStore(Config{Root: " "}, nil)
		assert.Error(t, err)
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		_, err := NewFileSystemStore(Config{Root: t.TempDir(), Format: "xml"}, nil)
		assert.Error(t, err)
	})

	t.Run("does not create the root eagerly", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "later")
		_ = newTestStore(t, Config{Root: root})
		_, err := os.Stat(root)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestFileSystemStore_PathFor(t *testing.T) {
	s := newTestStore(t, Config{Root: "/cfg"})

	assert.Equal(t, filepath.FromSlash("/cfg/login/account.json"), s.PathFor("login/account.dnet"))
	assert.Equal(t, filepath.FromSlash("/cfg/hero.json"), s.PathFor("hero.proto-def"))
	assert.Equal(t, filepath.FromSlash("/cfg/v1.2/bag.json"), s.PathFor("v1.2/bag.dnet"))

	y := newTestStore(t, Config{Root: "/cfg", Format: "yaml"})
	assert.Equal(t, filepath.FromSlash("/cfg/hero.yaml"), y.PathFor("hero.dnet"))
}

func TestFileSystemStore_SaveLoad(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			s := newTestStore(t, Config{Format: format})

			require.NoError(t, s.Save("login/account.dnet", loginDocument()))
			assert.True(t, s.Exists("login/account.dnet"))

			got, err := s.Load("login/account.dnet")
			require.NoError(t, err)
			assert.Equal(t, loginDocument(), got)

			names, err := s.List()
			require.NoError(t, err)
			assert.Equal(t, []string{"login/account"}, names)
		})
	}
}

func TestFileSystemStore_Load(t *testing.T) {
	s := newTestStore(t, Config{})

	t.Run("missing document", func(t *testing.T) {
		_, err := s.Load("nothing.dnet")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, s.Exists("nothing.dnet"))
	})

	t.Run("malformed document", func(t *testing.T) {
		p := s.PathFor("broken.dnet")
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(`{"c2s_mappings": [`), 0644))

		_, err := s.Load("broken.dnet")

		var de *codec.DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, p, de.Path)
	})
}

func TestFileSystemStore_SaveEmptyDocument(t *testing.T) {
	s := newTestStore(t, Config{})
	doc := mapping.NewDocument("bag.dnet", "")
	doc.EnsureMapping("ReqBag", "")

	err := s.Save("bag.dnet", doc)

	assert.ErrorIs(t, err, ErrEmptyDocument)
	_, statErr := os.Stat(s.Root())
	assert.True(t, os.IsNotExist(statErr), "nothing written")
	assert.ErrorIs(t, s.Save("bag.dnet", nil), ErrEmptyDocument)

	doc.AddTrigger("RspBag", mapping.NewTrigger("daily refresh"))
	require.NoError(t, s.Save("bag.dnet", doc), "triggers alone make a document worth keeping")
}

func TestFileSystemStore_SaveKeepsPreviousOnFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	s := newTestStore(t, Config{})
	require.NoError(t, s.Save("bag.dnet", loginDocument()))
	require.NoError(t, os.Chmod(s.Root(), 0555))
	t.Cleanup(func() { _ = os.Chmod(s.Root(), 0755) })

	changed := loginDocument()
	changed.Description = "changed"
	err := s.Save("bag.dnet", changed)

	var ee *codec.EncodeError
	require.ErrorAs(t, err, &ee)
	got, err := s.Load("bag.dnet")
	require.NoError(t, err)
	assert.Equal(t, "account", got.Description)
}

func TestFileSystemStore_Delete(t *testing.T) {
	s := newTestStore(t, Config{})
	require.NoError(t, s.Save("bag.dnet", loginDocument()))

	require.NoError(t, s.Delete("bag.dnet"))
	assert.False(t, s.Exists("bag.dnet"))
	assert.ErrorIs(t, s.Delete("bag.dnet"), ErrNotFound)
}

func TestFileSystemStore_List(t *testing.T) {
	s := newTestStore(t, Config{})

	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names, "missing root lists nothing")

	require.NoError(t, s.Save("z.dnet", loginDocument()))
	require.NoError(t, s.Save("a/b.dnet", loginDocument()))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "notes.txt"), []byte("x"), 0644))

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b", "z"}, names)
}

func TestFileSystemStore_DefaultLabels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Root = filepath.Join(t.TempDir(), "clientconfig")
	s := newTestStore(t, cfg)

	require.NoError(t, s.Save("login/account.dnet", loginDocument()))

	data, err := os.ReadFile(s.PathFor("login/account.dnet"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type": "必然回包"`)
	assert.Contains(t, string(data), `"count": "一次"`)
}

func TestFileSystemStore_ExportImport(t *testing.T) {
	s := newTestStore(t, Config{LegacyLabels: true})
	dir := t.TempDir()

	for _, name := range []string{"out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name)
			require.NoError(t, s.Export(loginDocument(), p))

			data, err := os.ReadFile(p)
			require.NoError(t, err)
			assert.Contains(t, string(data), "必然回包")

			got, err := s.Import(p)
			require.NoError(t, err)
			assert.Equal(t, loginDocument(), got)
		})
	}

	_, err := s.Import(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrNotFound)
}
