package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func widgetDescriptor() *Descriptor {
	return &Descriptor{
		Entity:  "widget",
		Table:   "widgets",
		IDField: "id",
		Fields: map[string]FieldSpec{
			"id":         {Kind: KindString},
			"name":       {Kind: KindString},
			"status":     {Kind: KindString},
			"seq":        {Kind: KindInt},
			"due_date":   {Kind: KindTime, Nullable: true},
			"created_at": {Kind: KindTime},
		},
		DefaultFields: []string{"id", "name"},
		DefaultSort:   Sort{Field: "created_at", Desc: true},
	}
}

func TestProject_DefaultsWhenEmpty(t *testing.T) {
	d := widgetDescriptor()

	sel := Project(d, nil)
	assert.True(t, sel.Fallback)
	assert.Equal(t, []string{"id", "name"}, sel.Fields)
	assert.Empty(t, sel.Rejected)
}

func TestProject_DropsUnknownAndKeepsID(t *testing.T) {
	d := widgetDescriptor()

	// Scenario: fields=name,bogusField -> {id, name}, sin error.
	sel := Project(d, []string{"name", "bogusField"})
	assert.Equal(t, []string{"id", "name"}, sel.Fields)
	assert.Equal(t, []string{"bogusField"}, sel.Rejected)
	assert.Equal(t, 2, sel.Requested)
	assert.False(t, sel.Fallback)
}

func TestProject_FallbackWhenNothingValid(t *testing.T) {
	d := widgetDescriptor()

	sel := Project(d, []string{"bogus", "internal_notes"})
	assert.True(t, sel.Fallback)
	assert.Equal(t, []string{"id", "name"}, sel.Fields)
	assert.ElementsMatch(t, []string{"bogus", "internal_notes"}, sel.Rejected)
}

func TestProject_Dedup(t *testing.T) {
	d := widgetDescriptor()

	sel := Project(d, []string{"name", "name", "status", "name"})
	assert.Equal(t, []string{"id", "name", "status"}, sel.Fields)
	assert.Equal(t, 2, sel.Requested)
}

func TestProject_Idempotent(t *testing.T) {
	d := widgetDescriptor()

	tests := []struct {
		name      string
		requested []string
	}{
		{name: "con rechazados", requested: []string{"name", "bogus", "seq"}},
		{name: "solo válidos", requested: []string{"status", "due_date"}},
		{name: "vacío", requested: nil},
		{name: "con id explícito", requested: []string{"id", "name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := Project(d, tt.requested)
			second := Project(d, first.Fields)
			assert.Equal(t, first.Fields, second.Fields,
				"proyectar una proyección debe ser un no-op")
		})
	}
}

func TestProject_AllowListInvariant(t *testing.T) {
	d := widgetDescriptor()

	requests := [][]string{
		nil,
		{"name"},
		{"bogus"},
		{"id", "seq", "nope", "due_date", "x"},
		{"created_at", "created_at"},
	}

	for _, req := range requests {
		sel := Project(d, req)
		assert.NotEmpty(t, sel.Fields)
		assert.True(t, sel.Contains(d.IDField))
		for _, f := range sel.Fields {
			assert.True(t, d.Allowed(f), "campo %q fuera del allow-list", f)
		}
	}
}

func TestParseFields(t *testing.T) {
	assert.Nil(t, ParseFields(""))
	assert.Nil(t, ParseFields("   "))
	assert.Equal(t, []string{"a", "b"}, ParseFields("a, b"))
	assert.Equal(t, []string{"a", "b"}, ParseFields("a,,b,"))
}

func TestRegistry_Lookup(t *testing.T) {
	reg := MustRegistry(widgetDescriptor())

	d, err := reg.Lookup("widget")
	assert.NoError(t, err)
	assert.Equal(t, "widget", d.Entity)

	_, err = reg.Lookup("gadget")
	assert.ErrorIs(t, err, ErrUnknownEntityType)
}

func TestRegistry_RejectsBrokenDescriptor(t *testing.T) {
	broken := widgetDescriptor()
	broken.DefaultFields = []string{"id", "internal_notes"} // fuera del allow-list

	_, err := NewRegistry(broken)
	assert.Error(t, err)
}
