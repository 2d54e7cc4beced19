package cliapp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// Executor runs an external command, handing each line of its combined
// stdout/stderr to onOutput.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

const (
	// maxLineBytes bounds a single buffered output line; longer runs are flushed as-is.
	maxLineBytes = 1 << 20
	// exporterWaitDelay is how long a cancelled exporter may keep its output
	// pipes open before they are forcibly closed.
	exporterWaitDelay = 5 * time.Second
)

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.WaitDelay = exporterWaitDelay

	var stdout, stderr *lineWriter
	if onOutput != nil {
		var mu sync.Mutex
		emit := func(line string) {
			mu.Lock()
			defer mu.Unlock()
			onOutput(line)
		}
		stdout = &lineWriter{emit: emit}
		stderr = &lineWriter{emit: emit}
		cmd.Stdout = stdout
		cmd.Stderr = stderr
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", filepath.Base(binary), err)
	}
	err := cmd.Wait()
	if onOutput != nil {
		stdout.flush()
		stderr.flush()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(binary), err)
	}
	return nil
}

// lineWriter splits a byte stream into lines. Each instance is written by a
// single goroutine; emit must be safe for concurrent use.
type lineWriter struct {
	emit func(string)
	buf  []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(string(bytes.TrimRight(w.buf[:i], "\r")))
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) > maxLineBytes {
		w.flush()
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if len(w.buf) > 0 {
		w.emit(string(w.buf))
	}
	w.buf = nil
}
