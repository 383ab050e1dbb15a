package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-s", "secret", "-t", "5", "-l", "debug",
		}, expectPanic: false,
			expected: &Config{
				Addr:                        "127.0.0.1:9090",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: 5 * time.Minute,
				LogLevel:                    "debug",
			}},
		{name: "Test2 unknown flags dropped", args: []string{"cmd", "-d", "db", "-a", ":1"},
			expectPanic: false,
			expected:    &Config{Addr: ":1"}},
		{name: "Test3 bad minutes", args: []string{"cmd", "-t", "x"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
