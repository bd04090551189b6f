package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpCarriesCodeAndDetails(t *testing.T) {
	err := New(CodeValidation, "price override cannot be negative").
		WithDetails(map[string]any{"field": "price_override"})

	d := Dump(err)
	assert.Equal(t, CodeValidation, d.Code)
	require.NotNil(t, d.Details)
	details, ok := d.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "price_override", details["field"])
	assert.NotEmpty(t, d.Chain)
}

func TestDumpUnwrapsPGError(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "ux_branch_sync_links_location_catalog",
		TableName:      "branch_sync_links",
	}
	err := Wrap(CodeConflict, fmt.Errorf("db: insert sync link: %w", pgErr), "initialize sync link")

	d := Dump(err)
	assert.Equal(t, CodeConflict, d.Code)
	assert.Equal(t, "23505", d.PGCode)
	assert.Equal(t, "ux_branch_sync_links_location_catalog", d.PGConstraint)
	assert.Equal(t, "branch_sync_links", d.PGTable)
}

func TestDumpNilError(t *testing.T) {
	d := Dump(nil)
	assert.Empty(t, d.TopMessage)
	assert.Nil(t, d.Details)
}
