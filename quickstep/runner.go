package quickstep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long output is drained after the process was killed.
const waitDelay = 2 * time.Second

// Runner starts the engine process once, feeds it stdin and collects both
// output channels after it exits.
type Runner interface {
	Run(ctx context.Context, exe string, args []string, stdin string) (stdout string, stderr string, err error)
}

var _ Runner = (*ExecRunner)(nil)

// ExecRunner runs the engine as a local subprocess.
type ExecRunner struct{}

// Run returns an error only when the process could not be run at all. A non
// zero exit status is not an error here: crashes are detected from stderr.
func (*ExecRunner) Run(ctx context.Context, exe string, args []string, stdin string) (string, string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", "", fmt.Errorf("engine run interrupted: %w", ctxErr)
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return "", "", fmt.Errorf("cmd.Run: %w", err)
	}

	return stdout.String(), stderr.String(), nil
}
