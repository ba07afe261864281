package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNeedsAttention(t *testing.T) {
	assert.False(t, needsAttention(0, 0, 0))
	assert.True(t, needsAttention(1, 0, 0))
	assert.True(t, needsAttention(0, 2, 0))

	// An expiring lease on its own is enough to flag the owner, even
	// with nothing overdue and no bounced cheques.
	assert.True(t, needsAttention(0, 0, 1))
}

func TestDashboardWindows(t *testing.T) {
	assert.Equal(t, 90*24*time.Hour, upcomingChequeWindow)
	assert.Equal(t, 90*24*time.Hour, expiringLeaseWindow)
}
