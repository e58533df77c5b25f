package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"alcyxob/gym-tracker/internal/repository"
)

func TestMapError(t *testing.T) {
	generic := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, repository.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "plan_items_plan_id_exercise_id_key"}, repository.ErrDuplicate},
		{"foreign key violation", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "plan_items_exercise_id_fkey"}, repository.ErrInvalidReference},
		{"unmapped", generic, generic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if tt.expected == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.expected)
		})
	}
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%bench%`, likePattern("bench"))
	assert.Equal(t, `%100\%\_max%`, likePattern("100%_max"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}

func TestSetBuilderPlaceholders(t *testing.T) {
	var b setBuilder
	assert.True(t, b.empty())
	b.add("name", "Push")
	b.add("is_public", true)
	where := b.arg("P1")

	assert.Equal(t, "name = $1, is_public = $2", b.clause())
	assert.Equal(t, "$3", where)
	assert.Equal(t, []any{"Push", true, "P1"}, b.args)
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	assert.NotEmpty(t, entries)
}
