package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/expensetracker/internal/logging"
	"github.com/dmitrijs2005/expensetracker/internal/models"
)

// captured collects everything printed through printlnFn.
type captured struct {
	mu    sync.Mutex
	lines []string
}

func (c *captured) println(a ...any) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	line := strings.TrimSuffix(fmt.Sprintln(a...), "\n")
	c.lines = append(c.lines, line)
	return len(line) + 1, nil
}

func (c *captured) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func (c *captured) contains(s string) bool {
	for _, l := range c.all() {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

func capturePrintln(t *testing.T) *captured {
	t.Helper()
	c := &captured{}
	orig := printlnFn
	printlnFn = c.println
	t.Cleanup(func() { printlnFn = orig })
	return c
}

// stubPassword makes getPassword and getNewPassword return a fresh copy of
// pw each call and records the slices they handed out.
func stubPassword(t *testing.T, pw string) *[][]byte {
	t.Helper()
	var handed [][]byte
	fn := func(io.Writer) ([]byte, error) {
		b := []byte(pw)
		handed = append(handed, b)
		return b, nil
	}
	origPw, origNew := getPassword, getNewPassword
	getPassword, getNewPassword = fn, fn
	t.Cleanup(func() { getPassword, getNewPassword = origPw, origNew })
	return &handed
}

type fakeBackend struct {
	mu sync.Mutex

	loginUser    *models.UserRecord
	loginErr     error
	registerUser *models.UserRecord
	registerErr  error
	logoutErr    error
	loggedIn     bool
	statusErr    error
	watchErr     error
	states       chan models.State
	closed       bool

	calls []string
	args  []string
}

func (f *fakeBackend) record(call string, args ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.args = append(f.args, args...)
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (*models.UserRecord, error) {
	f.record("login", email, password)
	return f.loginUser, f.loginErr
}

func (f *fakeBackend) Register(_ context.Context, email, username, password string) (*models.UserRecord, error) {
	f.record("register", email, username, password)
	return f.registerUser, f.registerErr
}

func (f *fakeBackend) Logout(context.Context) error {
	f.record("logout")
	return f.logoutErr
}

func (f *fakeBackend) IsLoggedIn(context.Context) (bool, error) {
	f.record("status")
	return f.loggedIn, f.statusErr
}

func (f *fakeBackend) Watch(context.Context) (<-chan models.State, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	return f.states, nil
}

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func newTestApp(b Backend, input string) *App {
	return newApp(b, logging.Nop(), strings.NewReader(input), io.Discard)
}
