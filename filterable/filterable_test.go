package filterable_test

import (
	"encoding/json"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/donutnomad/fieldfilter/filterable"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	ID    uint32
	Name  string
	Email string
}

// 手写的投影，与生成代码形状一致
type filteredAccount struct {
	ID    uint32                       `json:"id"`
	Name  filterable.Optional[string] `json:"name"`
	Email filterable.Optional[string] `json:"email"`
}

func (filteredAccount) FieldFilter(o account, fields filterable.Fields) filteredAccount {
	v0 := o.ID
	var v1 filterable.Optional[string]
	if fields.Has("Name") {
		v1 = filterable.Some(o.Name)
	}
	var v2 filterable.Optional[string]
	if fields.Has("Email") {
		v2 = filterable.Some(o.Email)
	}
	return filteredAccount{ID: v0, Name: v1, Email: v2}
}

var _ filterable.Filterable[account, filteredAccount] = filteredAccount{}

func TestOptional(t *testing.T) {
	some := filterable.Some("x")
	v, ok := some.Get()
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	assert.True(t, some.IsPresent())
	assert.Equal(t, "x", some.MustGet())
	assert.Equal(t, "Some(x)", some.String())

	none := filterable.None[string]()
	assert.True(t, none.IsAbsent())
	assert.Equal(t, "fallback", none.OrElse("fallback"))
	assert.Equal(t, "", none.OrEmpty())
	assert.Equal(t, "None", none.String())
	assert.Panics(t, func() { none.MustGet() })

	var zero filterable.Optional[int]
	assert.Equal(t, filterable.None[int](), zero)
}

func TestOptional_Option(t *testing.T) {
	assert.Equal(t, mo.Some(3), filterable.Some(3).ToOption())
	assert.Equal(t, mo.None[int](), filterable.None[int]().ToOption())
	assert.Equal(t, filterable.Some(3), filterable.FromOption(mo.Some(3)))
	assert.Equal(t, filterable.None[int](), filterable.FromOption(mo.None[int]()))
}

func TestOptional_JSON(t *testing.T) {
	p := filteredAccount{ID: 1, Email: filterable.Some("allen@example.org")}

	data, err := sonic.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":null,"email":"allen@example.org"}`, string(data))

	// 标准库编码结果一致
	data, err = json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":null,"email":"allen@example.org"}`, string(data))

	var back filteredAccount
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

func TestFields(t *testing.T) {
	fields := filterable.NewFields("Name", "Email", "Name")
	assert.Equal(t, 2, fields.Len())
	assert.True(t, fields.Has("Name"))
	assert.False(t, fields.Has("name"))
	assert.Equal(t, []string{"Email", "Name"}, fields.Names())

	var nilFields filterable.Fields
	assert.False(t, nilFields.Has("Name"))
	assert.Equal(t, 0, nilFields.Len())
	nilFields.Add("Name", "ID")
	assert.Equal(t, []string{"ID", "Name"}, nilFields.Names())

	parsed := filterable.ParseFields(" Name, ,Email,")
	assert.Equal(t, []string{"Email", "Name"}, parsed.Names())
	assert.Equal(t, 0, filterable.ParseFields("").Len())

	union := filterable.NewFields("ID").Union(parsed)
	assert.Equal(t, []string{"Email", "ID", "Name"}, union.Names())
	assert.Equal(t, 2, parsed.Len())
}

func TestFilter(t *testing.T) {
	a := account{ID: 1, Name: "Allen", Email: "allen@example.org"}

	tests := []struct {
		name   string
		fields filterable.Fields
		want   filteredAccount
	}{
		{
			name:   "仅请求 Email",
			fields: filterable.NewFields("Email"),
			want:   filteredAccount{ID: 1, Email: filterable.Some("allen@example.org")},
		},
		{
			name:   "全部请求",
			fields: filterable.NewFields("Name", "Email"),
			want: filteredAccount{
				ID:    1,
				Name:  filterable.Some("Allen"),
				Email: filterable.Some("allen@example.org"),
			},
		},
		{
			name:   "空集合",
			fields: filterable.Fields{},
			want:   filteredAccount{ID: 1},
		},
		{
			name:   "nil 集合",
			fields: nil,
			want:   filteredAccount{ID: 1},
		},
		{
			name:   "无关字段名被忽略",
			fields: filterable.NewFields("Password", "ID"),
			want:   filteredAccount{ID: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterable.Filter[filteredAccount](a, tt.fields)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterAll(t *testing.T) {
	items := []account{
		{ID: 1, Name: "Allen"},
		{ID: 2, Name: "Bob"},
	}
	got := filterable.FilterAll[filteredAccount](items, filterable.NewFields("Name"))
	require.Len(t, got, 2)
	assert.Equal(t, filterable.Some("Bob"), got[1].Name)
	assert.Nil(t, filterable.FilterAll[filteredAccount]([]account(nil), nil))
}
