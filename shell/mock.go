package shell

import (
	"context"
	"strings"
	"sync"
)

// Call records one command executed through MockRunner.
type Call struct {
	Dir         string
	Command     string
	Interactive bool
}

// MockResponse is the scripted outcome of a command.
type MockResponse struct {
	Result Result
	Err    error // returned instead of a Result, e.g. a *SpawnError
}

// MockRunner is a Runner for tests. Responses are looked up by exact
// command, then by registered prefix; unknown commands get the fallback.
type MockRunner struct {
	mu       sync.Mutex
	exact    map[string]MockResponse
	prefixes []prefixResponse
	fallback *MockResponse
	calls    []Call
}

type prefixResponse struct {
	prefix   string
	response MockResponse
}

// NewMockRunner creates a MockRunner where every unknown command succeeds
// with empty output.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		exact:    make(map[string]MockResponse),
		fallback: &MockResponse{},
	}
}

// NewStrictMockRunner creates a MockRunner that fails unknown commands
// with ErrNoMockResponse.
func NewStrictMockRunner() *MockRunner {
	return &MockRunner{exact: make(map[string]MockResponse)}
}

// OnCommand scripts the stdout and exit code for an exact command.
func (m *MockRunner) OnCommand(command, stdout string, exitCode int) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exact[command] = MockResponse{Result: Result{ExitCode: exitCode, Stdout: stdout}}
	return m
}

// OnPrefix scripts the stdout and exit code for every command starting with prefix.
func (m *MockRunner) OnPrefix(prefix, stdout string, exitCode int) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefixes = append(m.prefixes, prefixResponse{
		prefix:   prefix,
		response: MockResponse{Result: Result{ExitCode: exitCode, Stdout: stdout}},
	})
	return m
}

// OnResponse scripts a full response for an exact command.
func (m *MockRunner) OnResponse(command string, response MockResponse) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exact[command] = response
	return m
}

// Calls returns every command executed so far, in order.
func (m *MockRunner) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Commands returns the command strings executed so far, in order.
func (m *MockRunner) Commands() []string {
	calls := m.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Command
	}
	return out
}

// Exec implements Runner.
func (m *MockRunner) Exec(ctx context.Context, dir, command string) (*Result, error) {
	return m.respond(dir, command, false)
}

// ExecInteractive implements Runner.
func (m *MockRunner) ExecInteractive(ctx context.Context, dir, command string) (*Result, error) {
	return m.respond(dir, command, true)
}

func (m *MockRunner) respond(dir, command string, interactive bool) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Dir: dir, Command: command, Interactive: interactive})

	resp, ok := m.exact[command]
	if !ok {
		for _, p := range m.prefixes {
			if strings.HasPrefix(command, p.prefix) {
				resp, ok = p.response, true
				break
			}
		}
	}
	if !ok {
		if m.fallback == nil {
			return nil, &SpawnError{Command: command, Err: ErrNoMockResponse}
		}
		resp = *m.fallback
	}

	if resp.Err != nil {
		return nil, resp.Err
	}
	result := resp.Result
	if interactive {
		result.Stdout, result.Stderr = "", ""
	}
	return &result, nil
}
