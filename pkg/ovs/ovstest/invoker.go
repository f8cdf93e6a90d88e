// Package ovstest provides a recording ovs-vsctl invoker for tests.
package ovstest

import (
	"errors"
	"strings"
	"sync"
)

var (
	// ErrExit mimics ovs-vsctl exiting with status 1
	ErrExit = errors.New("exit status 1")
	// ErrNoBridge mimics br-exists exiting with status 2
	ErrNoBridge = errors.New("exit status 2")
)

// Invoker records every invocation and answers from its tables instead of
// running ovs-vsctl.
type Invoker struct {
	mu    sync.Mutex
	calls [][]string

	// Bridges known to br-exists
	Bridges map[string]bool
	// Outputs maps the space-joined argument vector to standard output
	Outputs map[string]string
	// Errors maps a command name to the error it fails with
	Errors map[string]error
}

// NewInvoker returns an invoker for which the given bridges exist
func NewInvoker(bridges ...string) *Invoker {
	f := &Invoker{
		Bridges: make(map[string]bool),
		Outputs: make(map[string]string),
		Errors:  make(map[string]error),
	}
	for _, br := range bridges {
		f.Bridges[br] = true
	}
	return f
}

// Run implements ovs.Invoker
func (f *Invoker) Run(args ...string) error {
	_, err := f.invoke(args)
	return err
}

// Output implements ovs.Invoker
func (f *Invoker) Output(args ...string) ([]byte, error) {
	return f.invoke(args)
}

func (f *Invoker) invoke(args []string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]string(nil), args...))

	method := Command(args)
	if err, ok := f.Errors[method]; ok {
		return nil, err
	}
	if method == "br-exists" {
		if len(args) > 1 && f.Bridges[args[len(args)-1]] {
			return nil, nil
		}
		return nil, ErrNoBridge
	}
	if out, ok := f.Outputs[strings.Join(args, " ")]; ok {
		return []byte(out), nil
	}
	return nil, nil
}

// SetOutput scripts the standard output for an argument vector
func (f *Invoker) SetOutput(output string, args ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Outputs[strings.Join(args, " ")] = output
}

// Calls returns every recorded argument vector
func (f *Invoker) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.calls...)
}

// CallsTo returns the recorded argument vectors whose command is method
func (f *Invoker) CallsTo(method string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out [][]string
	for _, call := range f.calls {
		if Command(call) == method {
			out = append(out, call)
		}
	}
	return out
}

// Reset forgets the recorded calls
func (f *Invoker) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Command returns the first argument that is not an option
func Command(args []string) string {
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			return arg
		}
	}
	return ""
}
