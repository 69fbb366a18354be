package logger_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/gotrig/internal/logger"
)

func TestLogf(t *testing.T) {
	for _, tc := range []struct {
		name    string
		verbose bool
		traced  bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var out strings.Builder
			l := logger.New(&out, tc.verbose, true)
			logger.Logf(l)("trace %v", 42)
			l.Info("shown")

			assert.Contains(t, out.String(), "gotrig: shown")
			assert.Equal(t, tc.traced, strings.Contains(out.String(), "gotrig: trace 42"))
			assert.NotContains(t, out.String(), "\x1b[", "expected no color")
		})
	}
}
