package basic

import (
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/donutnomad/fieldfilter/filterable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allen = User{ID: 1, Name: "Allen", Email: "allen@example.org", Password: "secret"}

func TestFilteredUser(t *testing.T) {
	tests := []struct {
		name   string
		fields filterable.Fields
		want   FilteredUser
	}{
		{
			name:   "仅请求 Email",
			fields: filterable.NewFields("Email"),
			want:   FilteredUser{ID: 1, Email: filterable.Some("allen@example.org")},
		},
		{
			name:   "空集合",
			fields: filterable.NewFields(),
			want:   FilteredUser{ID: 1},
		},
		{
			name:   "请求 Name 和 Email",
			fields: filterable.NewFields("Name", "Email"),
			want: FilteredUser{
				ID:    1,
				Name:  filterable.Some("Allen"),
				Email: filterable.Some("allen@example.org"),
			},
		},
		{
			// 非 Optional 字段忽略选择，名字大小写必须一致
			name:   "请求 ID 与小写 name",
			fields: filterable.NewFields("ID", "name"),
			want:   FilteredUser{ID: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewFilteredUser(allen, tt.fields))
			assert.Equal(t, tt.want, filterable.Filter[FilteredUser](allen, tt.fields))
		})
	}
}

// 字段声明顺序不影响结果
func TestReorderedUser(t *testing.T) {
	for _, fields := range []filterable.Fields{
		nil,
		filterable.NewFields("Name"),
		filterable.NewFields("Email"),
		filterable.NewFields("Name", "Email"),
	} {
		a := NewFilteredUser(allen, fields)
		b := NewReorderedUser(allen, fields)
		assert.Equal(t, a.ID, b.ID)
		assert.Equal(t, a.Name, b.Name)
		assert.Equal(t, a.Email, b.Email)
	}
}

func TestFilteredProfile_NestedOptional(t *testing.T) {
	empty := Profile{ID: 2, Status: filterable.None[string]()}

	// 未请求: 外层 None
	got := NewFilteredProfile(empty, filterable.NewFields())
	assert.True(t, got.Status.IsAbsent())
	assert.Equal(t, uint32(2), got.ID)

	// 请求: 外层 Some，内层保持源值 None
	got = NewFilteredProfile(empty, filterable.NewFields("status"))
	inner, ok := got.Status.Get()
	require.True(t, ok)
	assert.True(t, inner.IsAbsent())

	// key=json 时按 json 名匹配，字段名不生效
	got = NewFilteredProfile(Profile{ID: 3, Status: filterable.Some("on")}, filterable.NewFields("Status"))
	assert.True(t, got.Status.IsAbsent())

	got = NewFilteredProfile(Profile{ID: 3, Status: filterable.Some("on")}, filterable.ParseFields("status"))
	assert.Equal(t, filterable.Some(filterable.Some("on")), got.Status)
}

func TestFilteredUser_JSON(t *testing.T) {
	data, err := sonic.Marshal(NewFilteredUser(allen, filterable.ParseFields("Email")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ID":1,"Name":null,"Email":"allen@example.org"}`, string(data))
}

func TestFilteredUser_Concurrent(t *testing.T) {
	fields := filterable.NewFields("Name")
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := NewFilteredUser(allen, fields)
			assert.Equal(t, filterable.Some("Allen"), got.Name)
		}()
	}
	wg.Wait()
}
