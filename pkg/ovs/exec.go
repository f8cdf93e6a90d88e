package ovs

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Invoker runs ovs-vsctl. Both calls block until the process has exited;
// a non-zero exit status is returned as an error.
type Invoker interface {
	// Run executes ovs-vsctl with args
	Run(args ...string) error
	// Output executes ovs-vsctl with args and returns its standard output
	Output(args ...string) ([]byte, error)
}

// ExecInvoker runs the ovs-vsctl binary found at Path
type ExecInvoker struct {
	Path   string
	logger *logrus.Logger
}

// NewExecInvoker creates an invoker for the binary at path
func NewExecInvoker(path string, logger *logrus.Logger) *ExecInvoker {
	if path == "" {
		path = DefaultVsctlPath
	}
	return &ExecInvoker{
		Path:   path,
		logger: logger,
	}
}

// Run implements Invoker
func (e *ExecInvoker) Run(args ...string) error {
	_, err := e.exec(args, false)
	return err
}

// Output implements Invoker
func (e *ExecInvoker) Output(args ...string) ([]byte, error) {
	return e.exec(args, true)
}

func (e *ExecInvoker) exec(args []string, capture bool) ([]byte, error) {
	cmd := exec.Command(e.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debugf("Executing: %s %s", e.Path, strings.Join(args, " "))

	start := time.Now()
	err := cmd.Run()
	elapsed := float64(time.Since(start) / time.Millisecond)

	code := exitCode(err)
	vsctlRequestLatency.WithLabelValues(methodOf(args), strconv.Itoa(code)).Observe(elapsed)

	if err != nil {
		return nil, fmt.Errorf("%s %s failed with code %d: %w (output: %s)",
			e.Path, strings.Join(args, " "), code, err, strings.TrimSpace(stderr.String()))
	}
	if !capture {
		return nil, nil
	}
	return stdout.Bytes(), nil
}

// exitCode maps the result of cmd.Run to a process exit code. Spawn
// failures and abnormal terminations are reported as -1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Ping verifies that ovs-vsctl can be executed
func (e *ExecInvoker) Ping() error {
	output, err := exec.Command(e.Path, "--version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("ovs-vsctl not accessible: %w (output: %s)", err, string(output))
	}
	e.logger.Debugf("OVS version: %s", strings.TrimSpace(string(output)))
	return nil
}
