// Package kvtest 提供各个 kv.Store 后端共用的行为测试
package kvtest

import (
	"context"
	"testing"

	"campus_chat/internal/dao/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreSuite 对 Store 执行通用读写语义检查
// 调用方需保证 store 初始为空
func RunStoreSuite(t *testing.T, store kv.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		v, found, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, v)
	})

	t.Run("set get remove", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "a", []byte(`{"x":1}`)))
		v, found, err := store.Get(ctx, "a")
		require.NoError(t, err)
		require.True(t, found)
		assert.JSONEq(t, `{"x":1}`, string(v))

		require.NoError(t, store.Remove(ctx, "a"))
		_, found, err = store.Get(ctx, "a")
		require.NoError(t, err)
		assert.False(t, found)

		// 删除不存在的键不报错
		require.NoError(t, store.Remove(ctx, "a"))
	})

	t.Run("multi set and get", func(t *testing.T) {
		require.NoError(t, store.MultiSet(ctx, map[string][]byte{
			"rooms": []byte(`[]`),
			"index": []byte(`{"k":"r1"}`),
		}))
		values, err := store.MultiGet(ctx, []string{"rooms", "index", "nope"})
		require.NoError(t, err)
		assert.Len(t, values, 2)
		assert.Equal(t, `[]`, string(values["rooms"]))
		assert.Equal(t, `{"k":"r1"}`, string(values["index"]))
		assert.NotContains(t, values, "nope")
	})

	t.Run("multi set overwrites", func(t *testing.T) {
		require.NoError(t, store.MultiSet(ctx, map[string][]byte{"index": []byte(`{}`)}))
		v, found, err := store.Get(ctx, "index")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, `{}`, string(v))
	})

	t.Run("json helpers", func(t *testing.T) {
		type doc struct {
			Name string `json:"name"`
		}
		require.NoError(t, kv.SaveJSON(ctx, store, "doc", doc{Name: "campus"}))

		got := doc{Name: "default"}
		found, err := kv.LoadJSON(ctx, store, "doc", &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "campus", got.Name)

		fallback := doc{Name: "default"}
		found, err = kv.LoadJSON(ctx, store, "doc-missing", &fallback)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, "default", fallback.Name)
	})
}
