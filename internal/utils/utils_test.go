package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID       string  `db:"id"`
	Name     *string `db:"name"`
	Skipped  string  `db:"-"`
	Untagged string
	hidden   string `db:"hidden"`
}

func TestStructTagValues(t *testing.T) {
	assert.Equal(t, []string{"id", "name"}, StructTagValues(new(row)))
	assert.Equal(t, []string{"id", "name"}, StructTagValues(row{}))
	assert.Panics(t, func() { StructTagValues("nope") })
}

func TestStructToMap(t *testing.T) {
	m := StructToMap(&row{ID: "a1", Name: StringPtr("Ada"), Skipped: "x", hidden: "y"})
	require.Len(t, m, 2)
	assert.Equal(t, "a1", m["id"])
	assert.Equal(t, "Ada", PtrString(m["name"].(*string)))
}

func TestErrorWrapOrNil(t *testing.T) {
	assert.NoError(t, ErrorWrapOrNil(nil, "load"))

	base := errors.New("boom")
	wrapped := ErrorWrapOrNil(base, "load alert")
	assert.EqualError(t, wrapped, "load alert: boom")
	assert.ErrorIs(t, wrapped, base)
	assert.Same(t, base, ErrorWrapOrNil(base, ""))
}

func TestNanoID(t *testing.T) {
	id := NanoID()
	assert.Len(t, id, NanoidSize)
	assert.Regexp(t, `^[0-9a-zA-Z]+$`, id)
	assert.NotEqual(t, id, NanoID())
	assert.Len(t, NanoIDSize(8), 8)
	assert.Len(t, NanoIDSize(0), NanoidSize)
}

func TestPointers(t *testing.T) {
	assert.Equal(t, "", PtrString(nil))
	assert.Equal(t, "x", PtrString(StringPtr("x")))
	assert.Equal(t, 1.5, *Float64Ptr(1.5))
}
