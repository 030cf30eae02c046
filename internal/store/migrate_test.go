// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jokester/jokester/pkg/errutil"
)

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("invalid://url")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "postgres://u:p@db:5432/jokes?sslmode=disable", want: "pgx5://u:p@db:5432/jokes?sslmode=disable"},
		{in: "postgresql://db/jokes", want: "pgx5://db/jokes"},
		{in: "pgx5://db/jokes", want: "pgx5://db/jokes"},
		{in: "mysql://db/jokes", want: "mysql://db/jokes"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, migrateURL(tt.in))
		})
	}
}

// mockMigrate implements migrateIface for testing.
type mockMigrate struct {
	upErr          error
	downErr        error
	stepsErr       error
	steps          []int
	versionVal     uint
	versionErr     error
	dirty          bool
	forceErr       error
	forced         []int
	closeSourceErr error
	closeDbErr     error
}

func (m *mockMigrate) Up() error   { return m.upErr }
func (m *mockMigrate) Down() error { return m.downErr }
func (m *mockMigrate) Steps(n int) error {
	m.steps = append(m.steps, n)
	return m.stepsErr
}
func (m *mockMigrate) Version() (uint, bool, error) { return m.versionVal, m.dirty, m.versionErr }
func (m *mockMigrate) Force(v int) error {
	m.forced = append(m.forced, v)
	return m.forceErr
}
func (m *mockMigrate) Close() (error, error) { return m.closeSourceErr, m.closeDbErr }

func TestMigrator_UpDown(t *testing.T) {
	tests := []struct {
		name     string
		mock     *mockMigrate
		run      func(*Migrator) error
		wantCode string
	}{
		{name: "up applies", mock: &mockMigrate{}, run: (*Migrator).Up},
		{name: "up with no change", mock: &mockMigrate{upErr: migrate.ErrNoChange}, run: (*Migrator).Up},
		{name: "up fails", mock: &mockMigrate{upErr: errors.New("syntax error")}, run: (*Migrator).Up, wantCode: "MIGRATION_UP_FAILED"},
		{name: "down rolls back", mock: &mockMigrate{}, run: (*Migrator).Down},
		{name: "down with no change", mock: &mockMigrate{downErr: migrate.ErrNoChange}, run: (*Migrator).Down},
		{name: "down fails", mock: &mockMigrate{downErr: errors.New("locked")}, run: (*Migrator).Down, wantCode: "MIGRATION_DOWN_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(&Migrator{m: tt.mock})
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestMigrator_Steps(t *testing.T) {
	t.Run("zero is a no-op", func(t *testing.T) {
		mm := &mockMigrate{}
		require.NoError(t, (&Migrator{m: mm}).Steps(0))
		assert.Empty(t, mm.steps)
	})

	t.Run("passes count through", func(t *testing.T) {
		mm := &mockMigrate{}
		require.NoError(t, (&Migrator{m: mm}).Steps(-1))
		assert.Equal(t, []int{-1}, mm.steps)
	})

	t.Run("error carries step count", func(t *testing.T) {
		mm := &mockMigrate{stepsErr: errors.New("boom")}
		err := (&Migrator{m: mm}).Steps(2)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_STEPS_FAILED")
		errutil.AssertErrorContext(t, err, "steps", 2)
	})
}

func TestMigrator_Version(t *testing.T) {
	t.Run("fresh database", func(t *testing.T) {
		v, dirty, err := (&Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}).Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), v)
		assert.False(t, dirty)
	})

	t.Run("dirty database", func(t *testing.T) {
		v, dirty, err := (&Migrator{m: &mockMigrate{versionVal: 2, dirty: true}}).Version()
		require.NoError(t, err)
		assert.Equal(t, uint(2), v)
		assert.True(t, dirty)
	})

	t.Run("error", func(t *testing.T) {
		_, _, err := (&Migrator{m: &mockMigrate{versionErr: errors.New("no table")}}).Version()
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Force(t *testing.T) {
	t.Run("negative version rejected before reaching driver", func(t *testing.T) {
		mm := &mockMigrate{}
		err := (&Migrator{m: mm}).Force(-1)
		errutil.AssertErrorCode(t, err, "INVALID_VERSION")
		assert.Empty(t, mm.forced)
	})

	t.Run("forces version", func(t *testing.T) {
		mm := &mockMigrate{}
		require.NoError(t, (&Migrator{m: mm}).Force(1))
		assert.Equal(t, []int{1}, mm.forced)
	})

	t.Run("driver error", func(t *testing.T) {
		err := (&Migrator{m: &mockMigrate{forceErr: errors.New("boom")}}).Force(1)
		errutil.AssertErrorCode(t, err, "MIGRATION_FORCE_FAILED")
	})
}

func TestMigrator_Status(t *testing.T) {
	tests := []struct {
		name        string
		version     uint
		wantName    string
		wantPending []uint
	}{
		{name: "fresh", version: 0, wantName: "", wantPending: []uint{1, 2}},
		{name: "users only", version: 1, wantName: "000001_create_users", wantPending: []uint{2}},
		{name: "latest", version: 2, wantName: "000002_create_jokes", wantPending: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := (&Migrator{m: &mockMigrate{versionVal: tt.version}}).Status()
			require.NoError(t, err)
			assert.Equal(t, tt.version, st.Version)
			assert.Equal(t, tt.wantName, st.Name)
			assert.Equal(t, tt.wantPending, st.Pending)
		})
	}

	t.Run("version error", func(t *testing.T) {
		_, err := (&Migrator{m: &mockMigrate{versionErr: errors.New("boom")}}).Status()
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Close(t *testing.T) {
	tests := []struct {
		name          string
		mock          *mockMigrate
		wantComponent string
	}{
		{name: "clean", mock: &mockMigrate{}},
		{name: "source error", mock: &mockMigrate{closeSourceErr: errors.New("src")}, wantComponent: "source"},
		{name: "database error", mock: &mockMigrate{closeDbErr: errors.New("db")}, wantComponent: "database"},
		{name: "both", mock: &mockMigrate{closeSourceErr: errors.New("src"), closeDbErr: errors.New("db")}, wantComponent: "both"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Migrator{m: tt.mock}).Close()
			if tt.wantComponent == "" {
				require.NoError(t, err)
				return
			}
			errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
			errutil.AssertErrorContext(t, err, "component", tt.wantComponent)
		})
	}
}

func TestMigrationName(t *testing.T) {
	name, err := MigrationName(1)
	require.NoError(t, err)
	assert.Equal(t, "000001_create_users", name)

	name, err = MigrationName(99)
	require.NoError(t, err)
	assert.Empty(t, name)
}
