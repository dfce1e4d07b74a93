package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

func writeLog(t *testing.T) string {
	t.Helper()
	lines := []string{
		`{"time":"2026-10-19T10:00:00Z","level":"DEBUG","msg":"verse index loaded","records":31102}`,
		`{"time":"2026-10-19T10:00:01Z","level":"INFO","msg":"assets resolved","origin":"bundled"}`,
		`{"time":"2026-10-19T10:00:02Z","level":"WARN","msg":"shard rejected","shard":3}`,
	}
	path := filepath.Join(t.TempDir(), "pocketbible.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestRunLogs_Tail(t *testing.T) {
	path := writeLog(t)

	tests := []struct {
		name    string
		opts    logsOptions
		want    []string
		notWant []string
	}{
		{"last line", logsOptions{lines: 1}, []string{"shard rejected"}, []string{"assets resolved"}},
		{"level filter", logsOptions{lines: 50, level: "info"}, []string{"assets resolved", "shard rejected"}, []string{"verse index loaded"}},
		{"pattern filter", logsOptions{lines: 50, filter: "origin"}, []string{"assets resolved"}, []string{"shard rejected"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			tt.opts.logFile = path
			require.NoError(t, runLogs(context.Background(), out, &bytes.Buffer{}, tt.opts))
			for _, s := range tt.want {
				assert.Contains(t, out.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out.String(), s)
			}
		})
	}
}

func TestRunLogs_Errors(t *testing.T) {
	path := writeLog(t)

	err := runLogs(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, logsOptions{logFile: path, filter: "("})
	assert.Equal(t, bberrors.ErrCodeInvalidReference, bberrors.GetCode(err))

	err = runLogs(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, logsOptions{logFile: filepath.Join(t.TempDir(), "none.log")})
	assert.Equal(t, bberrors.ErrCodeAssetNotFound, bberrors.GetCode(err))
}

func TestLogsCmd_UsesFlagFile(t *testing.T) {
	isolate(t)
	path := writeLog(t)

	out, stderr, err := run(t, t.TempDir(), "logs", "--file", path, "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Log file: "+path)
	assert.Contains(t, out, "assets resolved")
}
