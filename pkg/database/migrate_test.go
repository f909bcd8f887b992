package database

import (
	"regexp"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^\d{6}_\w+\.(up|down)\.sql$`)
	ups, downs := 0, 0
	for _, e := range entries {
		assert.True(t, pattern.MatchString(e.Name()), "unexpected file %s", e.Name())
		if strings.HasSuffix(e.Name(), ".up.sql") {
			ups++
		} else {
			downs++
		}
	}
	assert.Equal(t, ups, downs, "every up migration needs a down")
	assert.GreaterOrEqual(t, ups, 2)
}

func TestMigrationsSourceOrder(t *testing.T) {
	source, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer source.Close()

	first, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	next, err := source.Next(first)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)
}

func TestCommentsMigrationKeepsRootSentinel(t *testing.T) {
	body, err := migrationsFS.ReadFile("migrations/000002_create_comments.up.sql")
	require.NoError(t, err)
	sql := string(body)
	assert.Contains(t, sql, "parent_id  BIGINT      NOT NULL DEFAULT 0")
	assert.NotContains(t, sql, "REFERENCES comments")
}
