package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"-a", "https://tasks.example.com", "-t", "10", "-d", "/tmp/tk", "-l", "debug", "-m", "127.0.0.1:9100"}, expectPanic: false,
			expected: &Config{BaseURL: "https://tasks.example.com", RequestTimeout: 10 * time.Second, DataDir: "/tmp/tk", LogLevel: "debug", MetricsAddr: "127.0.0.1:9100"}},
		{name: "unknown flags ignored", args: []string{"-x", "1", "-t", "5"}, expectPanic: false,
			expected: &Config{RequestTimeout: 5 * time.Second}},
		{name: "incorrect timeout", args: []string{"-a", "https://tasks.example.com", "-t", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config, tt.args) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config, tt.args) })
			}
		})
	}
}
