package database

import (
	"context"
	"testing"
	"testing/fstest"

	"lireddit/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	all := Migrations()
	require.Len(t, all, 2)
	assert.Equal(t, "000001_create_users", all[0].String())
	assert.Equal(t, "000002_create_posts", all[1].String())
	for _, m := range all {
		assert.NotEmpty(t, m.Up)
		assert.NotEmpty(t, m.Down)
	}

	m, ok := FindMigration(2)
	require.True(t, ok)
	assert.Equal(t, "create_posts", m.Name)

	_, ok = FindMigration(99)
	assert.False(t, ok)
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000010_b.up.sql":   {Data: []byte("B")},
		"m/000010_b.down.sql": {Data: []byte("-B")},
		"m/000002_a.up.sql":   {Data: []byte("A")},
		"m/000002_a.down.sql": {Data: []byte("-A")},
		"m/README.md":         {Data: []byte("ignored")},
	}
	ms, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, 2, ms[0].Version)
	assert.Equal(t, "-A", ms[0].Down)
	assert.Equal(t, 10, ms[1].Version)
}

func TestLoadMigrations_Errors(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"missing down": {
			"m/000001_a.up.sql": {Data: []byte("A")},
		},
		"bad name": {
			"m/first.up.sql":   {Data: []byte("A")},
			"m/first.down.sql": {Data: []byte("-A")},
		},
		"duplicate version": {
			"m/000001_a.up.sql":   {Data: []byte("A")},
			"m/000001_a.down.sql": {Data: []byte("-A")},
			"m/1_b.up.sql":        {Data: []byte("B")},
			"m/1_b.down.sql":      {Data: []byte("-B")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadMigrations(fsys, "m")
			assert.Error(t, err)
		})
	}
}

func TestMigrator_UpAppliesPendingOnce(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	m := NewMigrator(db, []Migration{
		{Version: 1, Name: "things", Up: "CREATE TABLE things (id INTEGER PRIMARY KEY)", Down: "DROP TABLE things"},
		{Version: 2, Name: "others", Up: "CREATE TABLE others (id INTEGER PRIMARY KEY)", Down: "DROP TABLE others"},
	})

	ran, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ran)
	assert.True(t, db.Migrator().HasTable("things"))
	assert.True(t, db.Migrator().HasTable("others"))

	// a second run must not repeat CREATE TABLE
	ran, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, ran)

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMigrator_FailedScriptNotRecorded(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	m := NewMigrator(db, []Migration{{Version: 1, Name: "broken", Up: "CREATE TABLE ("}})
	_, err := m.Up(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000001_broken")

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrator_UnknownAppliedVersion(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, db.AutoMigrate(&appliedMigration{}))
	require.NoError(t, db.Create(&appliedMigration{Version: 42, Name: "ghost"}).Error)

	_, err := NewMigrator(db, []Migration{{Version: 1, Name: "x", Up: "SELECT 1"}}).Up(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000042")
}

func TestMigrator_AppliedWithoutTable(t *testing.T) {
	db := openSQLite(t)
	applied, err := NewMigrator(db, Migrations()).Applied(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestRollbackMigration_Errors(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(&appliedMigration{}))

	err := RollbackMigration(context.Background(), db, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has not been applied")

	err = RollbackMigration(context.Background(), db, 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRollbackMigration_RunsDownScript(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, db))
	require.True(t, db.Migrator().HasTable("posts"))

	require.NoError(t, RollbackMigration(ctx, db, 2))
	assert.False(t, db.Migrator().HasTable("posts"))
	assert.True(t, db.Migrator().HasTable("users"))

	applied, err := NewMigrator(db, Migrations()).Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)
}

func TestPlanSchema(t *testing.T) {
	cases := []struct {
		name     string
		cfg      config.Config
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{name: "default hybrid dev", cfg: config.Config{Env: "development"}, wantSQL: true, wantAuto: true},
		{name: "hybrid prod", cfg: config.Config{Env: "production", DBSchemaMode: "hybrid"}, wantSQL: true},
		{name: "sql", cfg: config.Config{Env: "development", DBSchemaMode: "SQL"}, wantSQL: true},
		{name: "auto dev", cfg: config.Config{Env: "test", DBSchemaMode: "auto"}, wantAuto: true},
		{name: "auto prod refused", cfg: config.Config{Env: "production", DBSchemaMode: "auto"}, wantErr: true},
		{name: "auto staging allowed", cfg: config.Config{Env: "staging", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, wantAuto: true},
		{name: "unknown", cfg: config.Config{DBSchemaMode: "yolo"}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := PlanSchema(&tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantSQL, plan.SQL)
			assert.Equal(t, tc.wantAuto, plan.AutoMigrate)
		})
	}
}

func TestApplySchema_AutoMode(t *testing.T) {
	db := openSQLite(t)
	cfg := &config.Config{Env: "test", DBSchemaMode: SchemaModeAuto}

	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("posts"))

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.SQL)
	assert.True(t, status.AutoMigrate)
	assert.Empty(t, status.Pending)
}

func TestGetSchemaStatus_Pending(t *testing.T) {
	db := openSQLite(t)
	cfg := &config.Config{Env: "development", DBSchemaMode: SchemaModeSQL}

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.Equal(t, SchemaModeSQL, status.Mode)
	assert.Len(t, status.Pending, len(Migrations()))

	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	status, err = GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, status.Applied)
	assert.Empty(t, status.Pending)
}
