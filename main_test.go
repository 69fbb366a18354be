package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gotrig/internal/logio"
)

func execute(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	logOut := &logio.Writer{Logf: t.Logf, Prefix: "log: "}
	defer logOut.Close()

	root := newRootCmd()
	root.SetArgs(append([]string{"--no-color"}, args...))
	root.SetOut(&out)
	root.SetErr(logOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDemos(t *testing.T) {
	for _, d := range demos {
		t.Run(d.name, func(t *testing.T) {
			out, err := execute(t, "-v", "run", d.name)
			require.NoError(t, err, "unexpected run error")
			assert.True(t, strings.HasPrefix(out, d.name+": "), "expected a report for %v", d.name)
			assert.NotContains(t, out, "FAIL")
		})
	}
}

func TestRun_all(t *testing.T) {
	out, err := execute(t, "run")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	var names []string
	for _, line := range lines {
		if line != "" && !strings.HasPrefix(line, " ") {
			names = append(names, line[:strings.Index(line, ":")])
		}
	}
	assert.Equal(t, []string{"roundtrip", "rebind", "direct", "nested", "dispatch"}, names,
		"expected reports in demo order")
	assert.Contains(t, out, "  add(3, 4) = [7] ok\n")
	assert.Contains(t, out, "  negate(5) = [-5] ok\n")
}

func TestRun_errors(t *testing.T) {
	_, err := execute(t, "run", "nope")
	assert.EqualError(t, err, `no demo named "nope"`)

	_, err = execute(t, "--step-limit", "10", "run", "roundtrip")
	assert.ErrorContains(t, err, "roundtrip: step limit exceeded")
}

func TestDump(t *testing.T) {
	out, err := execute(t, "dump", "roundtrip")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Image @16 entry @16\n"))
	assert.Contains(t, out, "p.call: ")
	assert.Contains(t, out, " p.entry = 0\n")

	out, err = execute(t, "dump", "--after", "roundtrip")
	require.NoError(t, err)
	assert.NotContains(t, out, " p.entry = 0\n", "expected the bound entry in memory")

	_, err = execute(t, "dump")
	assert.Error(t, err)
}

func TestDump_afterLimits(t *testing.T) {
	_, err := execute(t, "--step-limit", "10", "dump", "--after", "roundtrip")
	assert.ErrorContains(t, err, "roundtrip: step limit exceeded")
}

func TestConfig_runContext(t *testing.T) {
	var cfg config
	ctx, cancel := cfg.runContext(context.Background())
	_, has := ctx.Deadline()
	assert.False(t, has, "expected no deadline without a timeout")
	cancel()

	cfg.timeout = time.Minute
	ctx, cancel = cfg.runContext(context.Background())
	defer cancel()
	deadline, has := ctx.Deadline()
	require.True(t, has, "expected a deadline from the timeout")
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Equal(t, len(demos), strings.Count(out, "\n"))
	assert.Contains(t, out, "roundtrip  call add through a pointer, twice\n")
}
