package pkgresolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGuessName(t *testing.T) {
	tests := []struct {
		importPath string
		want       string
	}{
		{"fmt", "fmt"},
		{"net/http", "http"},
		{"github.com/samber/lo", "lo"},
		{"github.com/mattn/go-runewidth", "runewidth"},
		{"github.com/pmezard/go-difflib/difflib", "difflib"},
		{"gopkg.in/yaml.v3", "yaml"},
		{"github.com/jackc/pgx/v5", "pgx"},
		{"github.com/bytedance/sonic", "sonic"},
	}

	for _, tt := range tests {
		t.Run(tt.importPath, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessName(tt.importPath))
		})
	}
}

func TestIsStdLib(t *testing.T) {
	assert.True(t, IsStdLib("fmt"))
	assert.True(t, IsStdLib("encoding/json"))
	assert.False(t, IsStdLib("github.com/samber/lo"))
	assert.False(t, IsStdLib("gorm.io/datatypes"))
}

// 目录名与 package 声明不一致时以 package 声明为准
func TestResolver_ModuleLocal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/demo\n\ngo 1.25\n")
	writeFile(t, filepath.Join(root, "gg", "types.go"), "package g2\n\ntype Type int\n")
	writeFile(t, filepath.Join(root, "models", "user.go"), "package models\n")
	writeFile(t, filepath.Join(root, "models", "user_test.go"), "package models_test\n")

	projectRoot, err := FindProjectRoot(filepath.Join(root, "models"))
	require.NoError(t, err)
	r := New(projectRoot)
	assert.Equal(t, "example.com/demo", r.ModulePath())
	assert.Equal(t, "g2", r.PackageName("example.com/demo/gg"))
	assert.Equal(t, "models", r.PackageName("example.com/demo/models"))

	// 缓存命中后不再读盘
	require.NoError(t, os.RemoveAll(filepath.Join(root, "gg")))
	assert.Equal(t, "g2", r.PackageName("example.com/demo/gg"))
}

func TestResolver_ModCache(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("GOMODCACHE", cache)
	writeFile(t, filepath.Join(cache, "github.com", "!acme", "widgets@v1.2.0", "w.go"), "package oldwidgets\n")
	writeFile(t, filepath.Join(cache, "github.com", "!acme", "widgets@v1.10.0", "w.go"), "package widgets\n")
	writeFile(t, filepath.Join(cache, "github.com", "!acme", "widgets@v1.10.0", "sub", "s.go"), "package subpkg\n")

	r := New("")
	assert.Equal(t, "widgets", r.PackageName("github.com/Acme/widgets"))
	assert.Equal(t, "subpkg", r.PackageName("github.com/Acme/widgets/sub"))
	// 找不到时退化为推断
	assert.Equal(t, "missing", r.PackageName("github.com/acme/go-missing"))
}

func TestResolver_StdLib(t *testing.T) {
	r := New("")
	assert.Equal(t, "http", r.PackageName("net/http"))
	assert.Equal(t, "json", r.PackageName("encoding/json"))
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/demo\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := FindProjectRoot(nested)
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(root)
	gotReal, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, want, gotReal)
}
