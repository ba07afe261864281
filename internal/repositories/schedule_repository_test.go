package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitClause_ZeroMeansUncapped(t *testing.T) {
	// Portfolio rollups ask for every overdue row by passing 0; the query
	// must not gain a LIMIT 0, which Postgres reads as an empty result.
	assert.Equal(t, "", limitClause(0))
	assert.Equal(t, "", limitClause(-1))
}

func TestLimitClause_PositiveCap(t *testing.T) {
	assert.Equal(t, " LIMIT 20", limitClause(20))
	assert.Equal(t, " LIMIT 1", limitClause(1))
}
