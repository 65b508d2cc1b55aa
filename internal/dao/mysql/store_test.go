package mysql

import (
	"context"
	"path/filepath"
	"testing"

	"campus_chat/internal/config"
	"campus_chat/internal/dao/kv/kvtest"
	"campus_chat/internal/model"
	"campus_chat/pkg/errorx"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "kv.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	store := NewGormStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGormStore(t *testing.T) {
	kvtest.RunStoreSuite(t, newTestStore(t))
}

func TestGormStore_MultiSetUpserts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "chat_rooms", []byte(`[]`)))
	require.NoError(t, store.MultiSet(ctx, map[string][]byte{
		"chat_rooms":        []byte(`[{"roomId":"r1"}]`),
		"chat_thread_index": []byte(`{"k":"r1"}`),
	}))

	var count int64
	require.NoError(t, store.db.Model(&model.KVEntry{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	v, found, err := store.Get(ctx, "chat_rooms")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `[{"roomId":"r1"}]`, string(v))
}

func TestGormStore_ClosedDBReportsDBError(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())

	_, _, err := store.Get(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, errorx.CodeDBError, errorx.GetCode(err))
}

func TestDSN(t *testing.T) {
	dsn := DSN(&config.MysqlConfig{Host: "db", Port: 3306, User: "u", Password: "p", DatabaseName: "campus"})
	assert.Equal(t, "u:p@tcp(db:3306)/campus?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}
