package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpCreate, "CREATE"},
		{OpModify, "MODIFY"},
		{OpDelete, "DELETE"},
		{OpRename, "RENAME"},
		{Operation(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	// Given: zero and partially set options
	zero := Options{}.WithDefaults()
	custom := Options{DebounceWindow: time.Second, PollInterval: -1}.WithDefaults()

	// Then: only unset or invalid fields take defaults
	assert.Equal(t, DefaultOptions(), zero)
	assert.Equal(t, time.Second, custom.DebounceWindow)
	assert.Equal(t, DefaultOptions().PollInterval, custom.PollInterval)
	assert.Equal(t, DefaultOptions().EventBufferSize, custom.EventBufferSize)
}
