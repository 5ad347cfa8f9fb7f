package controllers

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/quietdesk/companion/pkg/contracts"
	"github.com/quietdesk/companion/pkg/queue"
)

// testRunTimeout bounds a local test suite run.
const testRunTimeout = 20 * time.Minute

// CodingController runs a repository's test suite locally and captures the
// output as artifacts. It touches no queue: test runs have no external
// effect to approve.
type CodingController struct {
	artifactsDir string
	log          *slog.Logger
}

// NewCodingController returns a controller writing under artifactsDir.
func NewCodingController(artifactsDir string, log *slog.Logger) *CodingController {
	if log == nil {
		log = slog.Default()
	}
	return &CodingController{artifactsDir: artifactsDir, log: log}
}

// Execute implements Controller for run_tests intents.
func (c *CodingController) Execute(ctx context.Context, intent contracts.Intent) contracts.ExecutionResult {
	if intent.Type != "run_tests" {
		return skipped(noteUnsupported)
	}

	repo := intent.PayloadString("repo")
	if repo == "" {
		repo = "."
	}
	suite := intent.PayloadString("suite")
	if suite == "" {
		suite = "go test ./..."
	}
	args := strings.Fields(suite)

	stamp := time.Now().UTC().Format("20060102_150405")
	outPath := filepath.Join(c.artifactsDir, "coding", fmt.Sprintf("tests_%s.out.txt", stamp))
	errPath := filepath.Join(c.artifactsDir, "coding", fmt.Sprintf("tests_%s.err.txt", stamp))

	runCtx, cancel := context.WithTimeout(ctx, testRunTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.Dir = repo
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if writeErr := queue.WriteFileAtomic(outPath, []byte(stdout.String())); writeErr != nil {
		return failed(writeErr.Error())
	}
	if writeErr := queue.WriteFileAtomic(errPath, []byte(stderr.String())); writeErr != nil {
		return failed(writeErr.Error())
	}

	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); ok {
			return contracts.ExecutionResult{
				Status:    contracts.ExecFail,
				Artifacts: []string{outPath, errPath},
				Note:      runErr.Error(),
			}
		}
		// Runner failure: command not found, timeout, bad dir.
		if writeErr := queue.WriteFileAtomic(errPath, []byte(runErr.Error())); writeErr != nil {
			return failed(writeErr.Error())
		}
		return contracts.ExecutionResult{
			Status:    contracts.ExecFail,
			Artifacts: []string{errPath},
			Note:      "runner_error",
		}
	}
	return contracts.ExecutionResult{
		Status:    contracts.ExecOK,
		Artifacts: []string{outPath, errPath},
		Note:      "rc=0",
	}
}
