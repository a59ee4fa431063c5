package database

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliosite/engine/internal/model"
)

func TestGetSqliteDB_InMemory(t *testing.T) {
	m := NewManager(zerolog.Nop())

	db, err := m.GetSqliteDB("")
	require.NoError(t, err)
	require.NotNil(t, db)
}

func TestGetSqliteDB_File(t *testing.T) {
	m := NewManager(zerolog.Nop())

	path := t.TempDir() + "/results.db"
	db, err := m.GetSqliteDB(path)
	require.NoError(t, err)
	require.NotNil(t, db)
}

func TestSetup_MigratesAndSeedsSite(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("site.latitude", 52.52)
	viper.Set("site.longitude", 13.405)

	m := NewManager(zerolog.Nop())
	db, err := m.GetSqliteDB(t.TempDir() + "/setup.db")
	require.NoError(t, err)
	m.DB = db

	require.NoError(t, m.Setup())

	for _, mdl := range model.DatabaseModels {
		assert.True(t, db.Migrator().HasTable(mdl), "expected table for %T", mdl)
	}

	var site model.SiteInfo
	require.NoError(t, db.First(&site).Error)
	assert.Equal(t, 52.52, site.Latitude)
	assert.Equal(t, "default", site.Name)
}

func TestDumpMemoryToDisk_RequiresPath(t *testing.T) {
	m := NewManager(zerolog.Nop())
	err := m.DumpMemoryToDisk()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite file path not set")
}

func TestDumpMemoryToDisk(t *testing.T) {
	m := NewManager(zerolog.Nop())
	db, err := m.GetSqliteDB("")
	require.NoError(t, err)
	m.DB = db
	m.SqliteFilePath = t.TempDir() + "/dump.db"

	require.NoError(t, db.AutoMigrate(&model.SiteInfo{}))
	require.NoError(t, m.DumpMemoryToDisk())
	assert.FileExists(t, m.SqliteFilePath)
}
