package filtergen

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/donutnomad/fieldfilter/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSrc = `package models

import "github.com/donutnomad/fieldfilter/filterable"

type Optional[T any] = filterable.Optional[T]

type User struct {
	ID    uint32
	Name  string
	Email string
}

// FilteredUser 对外视图
//
// @FieldFilterable
// @field_filterable_on(User)
type FilteredUser struct {
	ID    uint32
	Name  Optional[string]
	Email Optional[string]
}

// @FieldFilterable(key=snake)
// @field_filterable_on(User)
type SnakeUser struct {
	Name Optional[string]
}

// 只有辅助注解时不生成
//
// @field_filterable_on(User)
type Unused struct {
	ID uint32
}
`

func newRegistry(t *testing.T) *plugin.Registry {
	t.Helper()
	registry := plugin.NewRegistry()
	require.NoError(t, registry.Register(NewFilterGenerator()))
	return registry
}

func run(t *testing.T, dir string, check bool) (*plugin.RunStats, error) {
	t.Helper()
	return plugin.RunWithOptionsAndStats(context.Background(), &plugin.RunOptions{
		Registry: newRegistry(t),
		Patterns: []string{dir},
		Check:    check,
	})
}

func TestNewFilterGenerator(t *testing.T) {
	gen := NewFilterGenerator()
	assert.Equal(t, "filtergen", gen.Name())
	assert.Equal(t, []string{"FieldFilterable", "field_filterable_on"}, gen.Annotations())
	assert.Equal(t, []plugin.TargetKind{plugin.TargetStruct, plugin.TargetType}, gen.SupportedTargets())

	defs := gen.ParamDefs()
	require.Len(t, defs, 1)
	assert.Equal(t, "key", defs[0].Name)
	assert.Equal(t, "field", defs[0].Default)

	params, ok := gen.NewParams().(*FilterParams)
	require.True(t, ok)
	assert.Empty(t, params.Key)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "user.go", userSrc)

	stats, err := run(t, dir, false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FileCount)

	content, err := os.ReadFile(filepath.Join(dir, "user_filter.go"))
	require.NoError(t, err)
	out := string(content)

	_, err = parser.ParseFile(token.NewFileSet(), "user_filter.go", content, parser.AllErrors)
	require.NoError(t, err, out)

	assert.Contains(t, out, "// Code generated by fieldfilter. DO NOT EDIT.")
	assert.Contains(t, out, "package models")
	assert.Contains(t, out, `"github.com/donutnomad/fieldfilter/filterable"`)
	assert.Contains(t, out, "var _ filterable.Filterable[User, FilteredUser] = FilteredUser{}")
	assert.Contains(t, out, "FieldFilter(o User, fields filterable.Fields) FilteredUser {")
	assert.Contains(t, out, "v0 := o.ID")
	assert.Contains(t, out, `v1 := filterable.SomeIf(fields.Has("Name"), o.Name)`)
	assert.Contains(t, out, `v2 := filterable.SomeIf(fields.Has("Email"), o.Email)`)
	assert.Contains(t, out, "return FilteredUser{")
	assert.Contains(t, out, "func NewFilteredUser(o User, fields filterable.Fields) FilteredUser {")
	assert.Contains(t, out, "return FilteredUser{}.FieldFilter(o, fields)")

	// key=snake
	assert.Contains(t, out, `v0 := filterable.SomeIf(fields.Has("name"), o.Name)`)
	assert.NotContains(t, out, "Unused")

	// 非 Optional 字段不查询选择集合
	assert.NotContains(t, out, `fields.Has("ID")`)
}

func TestGenerate_SkipsSourceOnly(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "user.go", userSrc)

	scanned, err := plugin.ScanWithFilter(context.Background(), []string{AnnotationFilterable, AnnotationSource}, dir)
	require.NoError(t, err)

	result, err := NewFilterGenerator().Generate(&plugin.GenerateContext{Targets: scanned.Structs})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Definitions, 1)
}

func TestGenerate_Check(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "user.go", userSrc)

	_, err := run(t, dir, false)
	require.NoError(t, err)

	stats, err := run(t, dir, true)
	require.NoError(t, err)
	assert.Zero(t, stats.StaleCount)

	// 修改源文件后 check 失败，且不改写磁盘
	writeGoFile(t, dir, "user.go", userSrc+"\n// @FieldFilterable\n// @field_filterable_on(User)\ntype Extra struct {\n\tID uint32\n}\n")
	before, err := os.ReadFile(filepath.Join(dir, "user_filter.go"))
	require.NoError(t, err)

	stats, err = run(t, dir, true)
	assert.ErrorIs(t, err, plugin.ErrStale)
	assert.Equal(t, 1, stats.StaleCount)

	after, err := os.ReadFile(filepath.Join(dir, "user_filter.go"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// 仓库中的示例必须与生成器当前输出一致
func TestGenerate_ExampleUpToDate(t *testing.T) {
	dir := filepath.Join("examples", "basic")

	stats, err := run(t, dir, true)
	require.NoError(t, err)
	assert.Zero(t, stats.StaleCount)

	content, err := os.ReadFile(filepath.Join(dir, "models_filter.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "// FieldFilter 从 Profile 投影出 FilteredProfile，Optional 字段仅在 fields 包含其JSON名时填充\nfunc (_ FilteredProfile)")
}

func TestGenerate_Output(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "user.go", `package models

// @FieldFilterable(output=projections)
// @field_filterable_on(User)
type FilteredUser struct {
	ID uint32
}
`)

	_, err := run(t, dir, false)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "projections.go"))
	assert.NoFileExists(t, filepath.Join(dir, "user_filter.go"))
}

func TestGenerate_PackageDirective(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "doc.go", "// go:fieldfilter: plugin:filtergen -output `$PACKAGE_views`\npackage models\n")
	writeGoFile(t, dir, "user.go", `package models

// @FieldFilterable
// @field_filterable_on(User)
type FilteredUser struct {
	ID uint32
}
`)

	_, err := run(t, dir, false)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "models_views.go"))
}

func TestGenerate_ErrorsWriteNothing(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{
			name: "缺少源类型",
			src: `package models

type User struct{ ID uint32 }

// @FieldFilterable
type FilteredUser struct {
	ID uint32
}
`,
			message: "@field_filterable_on(<TYPE>)",
		},
		{
			name: "非结构体",
			src: `package models

type User struct{ ID uint32 }

// @FieldFilterable
// @field_filterable_on(User)
type Status int
`,
			message: "unimplemented",
		},
		{
			name: "字段在源类型中不存在",
			src: `package models

type User struct{ ID uint32 }

// @FieldFilterable
// @field_filterable_on(User)
type FilteredUser struct {
	ID   uint32
	Name Optional[string]
}
`,
			message: "源类型 User 中不存在字段: Name",
		},
		{
			name: "空白字段",
			src: `package models

type User struct {
	ID uint32
	_  struct{}
}

// @FieldFilterable
// @field_filterable_on(User)
type FilteredUser struct {
	ID uint32
	_  struct{}
}
`,
			message: "含有空白字段 _",
		},
		{
			name: "未知 key",
			src: `package models

type User struct{ ID uint32 }

// @FieldFilterable(key=kebab)
// @field_filterable_on(User)
type FilteredUser struct {
	ID uint32
}
`,
			message: "不支持的 key=kebab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeGoFile(t, dir, "user.go", tt.src)
			// 同一次运行中合法的目标也不会写入
			writeGoFile(t, dir, "ok.go", `package models

// @FieldFilterable
// @field_filterable_on(User)
type Valid struct {
	ID uint32
}
`)

			_, err := run(t, dir, false)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.message)
			assert.ErrorContains(t, err, "user.go:")
			assert.NoFileExists(t, filepath.Join(dir, "user_filter.go"))
			assert.NoFileExists(t, filepath.Join(dir, "ok_filter.go"))
		})
	}
}
