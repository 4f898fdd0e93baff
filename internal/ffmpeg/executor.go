package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// Result holds the outcome of a single ffmpeg invocation.
type Result struct {
	ExitCode int // -1 when the process could not be started or was killed.
	Stderr   string
	Err      error
}

// Runner executes a built argument slice (binary first).
type Runner interface {
	Run(ctx context.Context, args []string) Result
}

// Exec is the [Runner] that starts real processes. When Verbose is set,
// stderr is tee'd to os.Stderr in real time; otherwise it is captured
// silently for diagnosis.
type Exec struct {
	Verbose bool
}

var _ Runner = Exec{}

// Run starts args[0] with the remaining arguments and waits for it.
func (e Exec) Run(ctx context.Context, args []string) Result {
	if len(args) == 0 {
		return Result{ExitCode: -1, Err: errors.New("ffmpeg: empty command")}
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderrBuf bytes.Buffer
	if e.Verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	res := Result{Stderr: stderrBuf.String(), Err: err}
	if err != nil {
		res.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		}
	}
	return res
}
