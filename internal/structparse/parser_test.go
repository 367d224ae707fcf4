package structparse

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStruct_Simple(t *testing.T) {
	info, err := ParseStruct("testdata/simple/user.go", "User")
	require.NoError(t, err)

	assert.Equal(t, "User", info.Name)
	assert.Equal(t, "simple", info.PackageName)
	assert.False(t, info.HasEmbedded())
	assert.Zero(t, info.TypeParams)

	names := make([]string, 0, len(info.Fields))
	for _, f := range info.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"ID", "Name", "Nick", "Email", "CreatedAt"}, names)

	email, ok := info.Field("Email")
	require.True(t, ok)
	assert.Equal(t, "string", email.Type)
	assert.Equal(t, `json:"email,omitempty"`, email.Tag)
	assert.Equal(t, "email,omitempty", email.TagValue("json"))

	nick, _ := info.Field("Nick")
	assert.Equal(t, "name", nick.TagValue("json"))

	created, _ := info.Field("CreatedAt")
	assert.Equal(t, "time.Time", created.Type)
	assert.Equal(t, "time", info.Imports["time"].ImportPath)

	_, ok = info.Field("Password")
	assert.False(t, ok)
}

func TestParseStruct_Generic(t *testing.T) {
	info, err := ParseStruct("testdata/simple/user.go", "Pair")
	require.NoError(t, err)
	assert.Equal(t, 2, info.TypeParams)
	assert.Equal(t, "K", info.Fields[0].Type)
}

func TestParseStruct_Embedded(t *testing.T) {
	info, err := ParseStruct("testdata/simple/user.go", "Account")
	require.NoError(t, err)
	require.Len(t, info.Fields, 3)
	assert.True(t, info.HasEmbedded())

	assert.Equal(t, "Base", info.Fields[0].Name)
	assert.True(t, info.Fields[0].Embedded)
	assert.Equal(t, "Location", info.Fields[1].Name)
	assert.Equal(t, "*time.Location", info.Fields[1].Type)
	assert.False(t, info.Fields[2].Embedded)
}

func TestParseStruct_NotFound(t *testing.T) {
	_, err := ParseStruct("testdata/simple/user.go", "Missing")
	assert.ErrorContains(t, err, "未找到结构体 Missing")

	// 别名不是结构体
	_, err = ParseStruct("testdata/simple/user.go", "UserID")
	assert.Error(t, err)

	_, err = ParseStruct("testdata/nope.go", "User")
	assert.ErrorContains(t, err, "解析文件失败")
}

func TestExtractImports(t *testing.T) {
	file, err := parser.ParseFile(token.NewFileSet(), "testdata/imports/types.go", nil, parser.ImportsOnly)
	require.NoError(t, err)

	imports := ExtractImports(file, nil)
	assert.Len(t, imports, 3)
	assert.Equal(t, "github.com/shopspring/decimal", imports["decimal"].ImportPath)
	assert.False(t, imports["decimal"].Explicit)
	assert.Equal(t, "gorm.io/gorm", imports["orm"].ImportPath)
	assert.True(t, imports["orm"].Explicit)

	// 点导入与空白导入不登记
	assert.NotContains(t, imports, ".")
	assert.NotContains(t, imports, "_")
	assert.NotContains(t, imports, "strings")
}

type fixedResolver map[string]string

func (r fixedResolver) PackageName(importPath string) string {
	return r[importPath]
}

func TestExtractImports_Resolver(t *testing.T) {
	src := `package p

import (
	"github.com/mattn/go-runewidth"
	gg "example.com/gg"
)
`
	file, err := parser.ParseFile(token.NewFileSet(), "p.go", src, parser.ImportsOnly)
	require.NoError(t, err)

	imports := ExtractImports(file, fixedResolver{
		"github.com/mattn/go-runewidth": "runewidth",
		"example.com/gg":                "g2",
	})
	assert.Contains(t, imports, "runewidth")
	// 显式别名优先
	assert.Contains(t, imports, "gg")
	assert.NotContains(t, imports, "g2")
}

func TestReferencedPackages(t *testing.T) {
	info, err := ParseStruct("testdata/imports/types.go", "Order")
	require.NoError(t, err)

	amount, _ := info.Field("Amount")
	assert.Equal(t, []string{"decimal"}, ReferencedPackages(amount.TypeExpr))

	items, _ := info.Field("Items")
	assert.Equal(t, "map[string][]*decimal.Decimal", items.Type)
	assert.Equal(t, []string{"decimal"}, ReferencedPackages(items.TypeExpr))

	id, _ := info.Field("ID")
	assert.Empty(t, ReferencedPackages(id.TypeExpr))

	expr, err := parser.ParseExpr("map[time.Duration]Optional[orm.DeletedAt]")
	require.NoError(t, err)
	assert.Equal(t, []string{"orm", "time"}, ReferencedPackages(expr))
}

func TestFindStructInDir(t *testing.T) {
	info, err := FindStructInDir("testdata/simple", "Account")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Account", info.Name)

	info, err = FindStructInDir("testdata/simple", "Missing")
	require.NoError(t, err)
	assert.Nil(t, info)

	_, err = FindStructInDir("testdata/none", "User")
	assert.Error(t, err)

	files, err := FindGoFiles("testdata/imports")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
