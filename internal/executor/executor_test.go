package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/fentz26/szsrun/internal/connectors"
	"github.com/fentz26/szsrun/internal/connectors/localexec"
	"github.com/fentz26/szsrun/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockConnector records invocations and replays a canned result.
type mockConnector struct {
	result *connectors.ExecResult
	err    error
	calls  [][]string
}

func (m *mockConnector) Name() string { return "mock" }

func (m *mockConnector) IsAllowed(cmd string, args []string) bool { return true }

func (m *mockConnector) Execute(ctx context.Context, cmd string, args []string) (*connectors.ExecResult, error) {
	m.calls = append(m.calls, append([]string{cmd}, args...))
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// fixedSampler always returns the same draws.
type fixedSampler struct {
	index   int
	timeout int
}

func (f fixedSampler) NextCase(n int) int { return f.index }
func (f fixedSampler) NextTimeout() int   { return f.timeout }

func testCorpus() *models.Corpus {
	return &models.Corpus{
		Root: "TPTP",
		Cases: []models.Case{
			{Path: "TPTP/Problems/SET/SET001+1.p", ExpectedTag: "Theorem"},
			{Path: "TPTP/Problems/SYN/SYN000-1.p"},
		},
	}
}

func TestBuildArgs(t *testing.T) {
	spec := models.TrialSpec{
		Case:           models.Case{Path: "TPTP/Problems/SET/SET001+1.p"},
		TimeoutSeconds: 7,
	}
	want := []string{
		"--include", "TPTP",
		"--output_mode", "szs",
		"-p", "off",
		"--random_strategy", "on",
		"-t", "7s",
		"TPTP/Problems/SET/SET001+1.p",
	}
	if diff := cmp.Diff(want, BuildArgs("TPTP", spec)); diff != "" {
		t.Errorf("BuildArgs mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"\n", nil},
		{"a", []string{"a"}},
		{"a\nb\n", []string{"a", "b"}},
		{"a\r\nb\r\n", []string{"a", "b"}},
		{"a\n\nb", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SplitLines(tt.in)); diff != "" {
			t.Errorf("SplitLines(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestRun_UsesSampledCaseAndTimeout(t *testing.T) {
	conn := &mockConnector{result: &connectors.ExecResult{
		ExitCode: 0,
		Stdout:   "% Running strategy lrs+10_1\n% SZS status Theorem for SET001+1\n",
		Duration: 1500 * time.Millisecond,
	}}
	e := New("./vampire", testCorpus(), fixedSampler{index: 0, timeout: 4}, conn, zaptest.NewLogger(t))

	trial, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, trial.Seq)
	assert.NotEmpty(t, trial.ID)
	assert.Equal(t, "TPTP/Problems/SET/SET001+1.p", trial.Spec.Case.Path)
	assert.Equal(t, 4, trial.Spec.TimeoutSeconds)
	assert.Equal(t, []string{"% Running strategy lrs+10_1", "% SZS status Theorem for SET001+1"}, trial.Result.StdoutLines)
	assert.Equal(t, 1500*time.Millisecond, trial.Result.Elapsed)

	require.Len(t, conn.calls, 1)
	assert.Equal(t, "./vampire", conn.calls[0][0])
	assert.Equal(t, "TPTP/Problems/SET/SET001+1.p", conn.calls[0][len(conn.calls[0])-1])
	assert.Contains(t, conn.calls[0], "4s")
}

func TestRun_SequenceNumbersIncrease(t *testing.T) {
	conn := &mockConnector{result: &connectors.ExecResult{}}
	e := New("./vampire", testCorpus(), fixedSampler{index: 1, timeout: 1}, conn, nil)

	for want := 1; want <= 3; want++ {
		trial, err := e.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, trial.Seq)
	}
}

func TestRun_SpawnFailure(t *testing.T) {
	conn := &mockConnector{err: errors.New("fork/exec ./vampire: no such file or directory")}
	e := New("./vampire", testCorpus(), fixedSampler{}, conn, nil)

	trial, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, trial)

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, "./vampire", spawnErr.Command)
	assert.Len(t, conn.calls, 1, "spawn failures are not retried")
}

func TestRun_EmptyCorpus(t *testing.T) {
	conn := &mockConnector{result: &connectors.ExecResult{}}
	e := New("./vampire", &models.Corpus{Root: "TPTP"}, fixedSampler{}, conn, nil)

	_, err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCorpus)
	assert.Empty(t, conn.calls)
}

func TestRun_RealProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not available on windows")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found")
	}

	dir := t.TempDir()
	prover := filepath.Join(dir, "fake-prover")
	script := `#!/bin/sh
for last; do :; done
echo "% Running in random strategy mode"
echo "% SZS status Theorem for $last"
exit 0
`
	require.NoError(t, os.WriteFile(prover, []byte(script), 0755))

	corpus := &models.Corpus{Root: dir, Cases: []models.Case{{Path: "SET001+1.p", ExpectedTag: "Theorem"}}}
	e := New(prover, corpus, NewSampler(1), localexec.New("", prover), zaptest.NewLogger(t))

	trial, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, trial.Result.ExitCode)
	assert.Equal(t, []string{
		"% Running in random strategy mode",
		"% SZS status Theorem for SET001+1.p",
	}, trial.Result.StdoutLines)
	assert.Positive(t, int64(trial.Result.Elapsed))
}

func TestRunArgs_CaptureStderr(t *testing.T) {
	conn := &mockConnector{result: &connectors.ExecResult{
		Stdout: "% SZS status Theorem for a\n",
		Stderr: "==42== ERROR SUMMARY: 0 errors from 0 contexts\n",
	}}
	e := New("valgrind", nil, nil, conn, nil)
	spec := models.TrialSpec{Case: models.Case{Path: "a.p", ExpectedTag: "Theorem"}}

	trial, err := e.RunArgs(context.Background(), spec, []string{"./vampire", "a.p"})
	require.NoError(t, err)
	assert.Equal(t, []string{"% SZS status Theorem for a"}, trial.Result.StdoutLines)

	e.CaptureStderr(true)
	trial, err = e.RunArgs(context.Background(), spec, []string{"./vampire", "a.p"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"% SZS status Theorem for a",
		"==42== ERROR SUMMARY: 0 errors from 0 contexts",
	}, trial.Result.StdoutLines)
	assert.Equal(t, 2, trial.Seq)
}
