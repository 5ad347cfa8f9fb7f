package controllers

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietdesk/companion/pkg/contracts"
)

func runTestsIntent(repo, suite string) contracts.Intent {
	return contracts.Intent{
		Type:    "run_tests",
		Domain:  contracts.DomainCoding,
		Payload: map[string]any{"repo": repo, "suite": suite},
	}
}

func TestCodingControllerCapturesOutput(t *testing.T) {
	dir := t.TempDir()
	repo := t.TempDir()
	c := NewCodingController(dir, nil)

	res := c.Execute(context.Background(), runTestsIntent(repo, "echo all-tests-passed"))
	require.Equal(t, contracts.ExecOK, res.Status)
	assert.Equal(t, "rc=0", res.Note)
	require.Len(t, res.Artifacts, 2)

	out, err := os.ReadFile(res.Artifacts[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), "all-tests-passed")
}

func TestCodingControllerFailingSuite(t *testing.T) {
	c := NewCodingController(t.TempDir(), nil)
	res := c.Execute(context.Background(), runTestsIntent(t.TempDir(), "false"))
	assert.Equal(t, contracts.ExecFail, res.Status)
	assert.NotEqual(t, "runner_error", res.Note)
}

func TestCodingControllerRunnerError(t *testing.T) {
	c := NewCodingController(t.TempDir(), nil)
	res := c.Execute(context.Background(), runTestsIntent(t.TempDir(), "definitely-not-a-command-xyz"))
	require.Equal(t, contracts.ExecFail, res.Status)
	assert.Equal(t, "runner_error", res.Note)
}
