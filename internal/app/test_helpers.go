package app

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/pbrtgo/internal/config"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// FakeSubsystem records every lifecycle and parse call in order. Files listed
// in Fail make ParseFile return an error.
type FakeSubsystem struct {
	mu      sync.Mutex
	Calls   []string
	Options []*config.Options
	Fail    map[string]error
	// AcquireErr makes Acquire fail.
	AcquireErr error
}

// Acquire implements AcquireFunc.
func (f *FakeSubsystem) Acquire(_ context.Context, opts *config.Options) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "acquire")
	f.Options = append(f.Options, opts)
	if f.AcquireErr != nil {
		return nil, f.AcquireErr
	}
	return f, nil
}

// ParseFile implements Session.
func (f *FakeSubsystem) ParseFile(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "parse:"+name)
	return f.Fail[name]
}

// Release implements Session.
func (f *FakeSubsystem) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "release")
}

// Recorded returns a copy of the calls made so far.
func (f *FakeSubsystem) Recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

// SetupAppTest creates an App wired to fake, capturing stdout and logs.
func SetupAppTest(t *testing.T, opts *config.Options, fake *FakeSubsystem) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	stdout := &SafeBuffer{}
	logs := &SafeBuffer{}
	testApp := NewApp(opts, Deps{
		Stdout:  stdout,
		Stderr:  logs,
		Acquire: fake.Acquire,
		Cores:   func() int { return 8 },
	})

	t.Cleanup(func() {
		if os.Getenv("PBRT_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return testApp, stdout, logs
}
