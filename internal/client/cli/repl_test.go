package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) Open(ctx context.Context, location string) error {
	f.calls = append(f.calls, "open "+location)
	return nil
}
func (f *fakeExec) Back(ctx context.Context) error { f.calls = append(f.calls, "back"); return nil }
func (f *fakeExec) Status(ctx context.Context) error {
	f.calls = append(f.calls, "status")
	return nil
}

// capturePrints replaces printlnFn for the duration of the test.
func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Commands(t *testing.T) {
	lines := capturePrints(t)

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"accounts",
		"transfer",
		"go /loans?status=open",
		"back",
		"status",
		"logout",
		"register",
		"foobar",
		"exit",
		"accounts",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(status)" }, rdr(input))

	assert.Equal(t, []string{
		"login",
		"open /accounts",
		"open /transfer",
		"open /loans?status=open",
		"back",
		"status",
		"logout",
		"register",
	}, exec.calls)

	assert.Contains(t, *lines, helpAnonymous)
	assert.Contains(t, *lines, helpSignedIn)
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Contains(t, *lines, "Bye!")
	assert.Contains(t, *lines, "bank (status)> ")
}

func TestRunREPL_UsageAndEOF(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr("go\n\n   \ncalc"))

	assert.Equal(t, []string{"open /calculators"}, exec.calls)
	assert.Contains(t, *lines, "Usage: go <path>")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	capturePrints(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "s" }, rdr("login\n"))
	assert.Empty(t, exec.calls)
}

func TestShortcutsAreRegisteredScreens(t *testing.T) {
	a := newTestApp(t, "http://127.0.0.1:0", "")
	paths := make(map[string]bool)
	for _, r := range a.router.Routes() {
		paths[r.Path] = true
	}
	for cmd, loc := range shortcuts {
		assert.True(t, paths[loc], "shortcut %q points at unregistered %s", cmd, loc)
	}
}
