// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package migration

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../../data/migrations"

func TestToPgx5DSN(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/hub":   "pgx5://u:p@db:5432/hub",
		"postgresql://u:p@db:5432/hub": "pgx5://u:p@db:5432/hub",
		"pgx5://u:p@db:5432/hub":       "pgx5://u:p@db:5432/hub",
		"host=db user=u":               "host=db user=u",
	}

	for input, expected := range tests {
		assert.Equal(t, expected, ToPgx5DSN(input), input)
	}
}

func TestRunUp_MissingDirectory(t *testing.T) {
	_, err := RunUp("postgres://u:p@127.0.0.1:1/hub", filepath.Join(t.TempDir(), "absent"), slog.New(slog.DiscardHandler))
	assert.ErrorContains(t, err, "migration: failed to initialize")
}

// Every up migration needs a down migration so the migrate CLI can roll back.
func TestMigrationsArePaired(t *testing.T) {
	entries, err := os.ReadDir(migrationsDir)
	require.NoError(t, err)

	var ups int
	for _, entry := range entries {
		base, isUp := strings.CutSuffix(entry.Name(), ".up.sql")
		if !isUp {
			continue
		}
		ups++
		assert.FileExists(t, filepath.Join(migrationsDir, base+".down.sql"))
	}
	assert.Positive(t, ups)
}
