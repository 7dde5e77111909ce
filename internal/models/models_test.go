package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActivityLogEntryTime(t *testing.T) {
	e := ActivityLogEntry{Timestamp: 1700000000123}
	assert.Equal(t, time.Date(2023, 11, 14, 22, 13, 20, 123e6, time.UTC), e.Time())
}
