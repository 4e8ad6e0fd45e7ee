package query

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBuildKeysetClause_Postgres(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	k := &Keyset{Field: "due_date", SortValue: "2026-01-01", ID: id}
	clause, args := BuildKeysetClause(k, "id", PlaceholderDollar, 2)

	assert.Equal(t,
		"(due_date > $3 OR (due_date = $4 AND id > $5) OR due_date IS NULL)",
		clause)
	assert.Equal(t, []interface{}{"2026-01-01", "2026-01-01", id.String()}, args)
}

func TestBuildKeysetClause_DescUsesLessThan(t *testing.T) {
	id := uuid.New()

	k := &Keyset{Field: "seq", Desc: true, SortValue: int64(7), ID: id}
	clause, _ := BuildKeysetClause(k, "id", PlaceholderQuestion, 0)

	assert.Equal(t,
		"(seq < ? OR (seq = ? AND id < ?) OR seq IS NULL)",
		clause)
}

func TestBuildKeysetClause_NullAnchor(t *testing.T) {
	id := uuid.New()

	k := &Keyset{Field: "due_date", SortValue: nil, ID: id}
	clause, args := BuildKeysetClause(k, "id", PlaceholderQuestion, 0)

	// Ancla NULL: solo quedan filas NULL, avanzando por id.
	assert.Equal(t, "(due_date IS NULL AND id > ?)", clause)
	assert.Equal(t, []interface{}{id.String()}, args)
}

func TestBuildKeysetClause_NilKeyset(t *testing.T) {
	clause, args := BuildKeysetClause(nil, "id", PlaceholderDollar, 0)
	assert.Empty(t, clause)
	assert.Nil(t, args)
}

func TestBuildOrderBy(t *testing.T) {
	assert.Equal(t,
		"ORDER BY due_date ASC NULLS LAST, id ASC",
		BuildOrderBy(Sort{Field: "due_date"}, "id"))
	assert.Equal(t,
		"ORDER BY created_at DESC NULLS LAST, id DESC",
		BuildOrderBy(Sort{Field: "created_at", Desc: true}, "id"))
}

func TestBuildSelectColumns(t *testing.T) {
	sel := Selection{Fields: []string{"id", "title", "status"}}
	assert.Equal(t, "id, title, status", BuildSelectColumns(sel))
}
