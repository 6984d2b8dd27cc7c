//go:build e2e && unix

package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
	"unsafe"

	"github.com/creack/pty"
)

const ringSize = 1 << 20 // 1 MiB of scrollback

var binPath = "carlens_e2e"

// Keys understood by the browser
const (
	KeyEnter  = "\r"
	KeyEsc    = "\x1b"
	KeyCtrlC  = "\x03"
	KeyDown   = "j"
	KeyUp     = "k"
	KeySearch = "/"
	KeyHelp   = "?"
	KeyPager  = "p"
	KeyQuit   = "q"
)

// ANSI escape sequence regex for normalization - covers CSI, OSC, charset, keypad modes
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` + // CSI sequences
		`(?:\x1b\][^\x07]*\x07)|` + // OSC sequences
		`(?:\x1b[\(\)][A-Za-z])|` + // charset sequences
		`(?:\x1b=|\x1b>)|` + // keypad mode sequences
		`\r`, // carriage returns
)

// Terminal runs carlens in a PTY against fake vPIC and Unsplash servers
type Terminal struct {
	t    *testing.T
	pty  *os.File
	tty  *os.File
	cmd  *exec.Cmd
	home string
	cols uint16

	vpic     *httptest.Server
	unsplash *httptest.Server

	// Ring buffer for continuous output capture
	mu   sync.Mutex
	buf  []byte
	head int
	full bool
}

// NewTerminal creates a 120x40 terminal with fake upstreams
func NewTerminal(t *testing.T) *Terminal {
	term := &Terminal{
		t:    t,
		buf:  make([]byte, ringSize),
		home: t.TempDir(),
		cols: 120,
	}
	term.vpic = httptest.NewServer(http.HandlerFunc(fakeVPIC))
	term.unsplash = httptest.NewServer(http.HandlerFunc(fakeUnsplash))
	t.Cleanup(term.Cleanup)
	return term
}

// WithWidth sets the terminal width used by Start
func (term *Terminal) WithWidth(cols uint16) *Terminal {
	term.cols = cols
	return term
}

// Start launches carlens with args
func (term *Terminal) Start(args ...string) error {
	term.cmd = exec.Command(binPath, args...)
	term.cmd.Dir = term.home
	term.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+term.home,
		"XDG_CONFIG_HOME="+filepath.Join(term.home, ".config"),
		"CARLENS_VPIC_URL="+term.vpic.URL,
		"CARLENS_UNSPLASH_URL="+term.unsplash.URL,
		"CARLENS_UNSPLASH_ACCESS_KEY=e2e-key",
		"CARLENS_PAGER=cat",
	)

	ptyFile, tty, err := pty.Open()
	if err != nil {
		return fmt.Errorf("failed to open pty: %w", err)
	}
	term.pty = ptyFile
	term.tty = tty
	term.cmd.Stdout = tty
	term.cmd.Stdin = tty
	term.cmd.Stderr = tty

	ws := struct {
		Row uint16
		Col uint16
		X   uint16
		Y   uint16
	}{40, term.cols, 0, 0}
	syscall.Syscall(syscall.SYS_IOCTL, ptyFile.Fd(), uintptr(syscall.TIOCSWINSZ), uintptr(unsafe.Pointer(&ws)))

	if err := term.cmd.Start(); err != nil {
		ptyFile.Close()
		tty.Close()
		return fmt.Errorf("failed to start command: %w", err)
	}

	term.startReader()
	return nil
}

func (term *Terminal) startReader() {
	go func() {
		buf := make([]byte, 8192)
		for {
			n, err := term.pty.Read(buf)
			if n > 0 {
				term.mu.Lock()
				for i := 0; i < n; i++ {
					term.buf[term.head] = buf[i]
					term.head = (term.head + 1) % ringSize
					if term.head == 0 {
						term.full = true
					}
				}
				term.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()
}

// Send writes keystrokes to the application
func (term *Terminal) Send(keys ...string) {
	term.t.Helper()
	for _, k := range keys {
		if _, err := term.pty.Write([]byte(k)); err != nil {
			term.t.Fatalf("send %q: %v", k, err)
		}
		// let Bubble Tea read each key on its own
		time.Sleep(20 * time.Millisecond)
	}
}

// Search opens the search box, types carMake and submits it
func (term *Terminal) Search(carMake string) {
	term.t.Helper()
	term.Send(KeySearch)
	term.Send(carMake)
	term.Send(KeyEnter)
}

// See waits for text to appear in the normalized output
func (term *Terminal) See(text string) bool {
	term.t.Helper()
	return term.WaitFor(func(s string) bool { return strings.Contains(s, text) }, 5*time.Second)
}

// WaitFor polls the normalized output until pred holds or timeout expires
func (term *Terminal) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	term.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if pred(term.Plain()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// Exited waits for the process to terminate
func (term *Terminal) Exited(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		_, _ = term.cmd.Process.Wait()
		close(done)
	}()
	select {
	case <-done:
		term.cmd = nil
		return true
	case <-time.After(timeout):
		return false
	}
}

// Plain returns the captured output with ANSI sequences removed
func (term *Terminal) Plain() string {
	term.mu.Lock()
	defer term.mu.Unlock()
	var raw string
	if !term.full {
		raw = string(term.buf[:term.head])
	} else {
		out := make([]byte, ringSize)
		copy(out, term.buf[term.head:])
		copy(out[ringSize-term.head:], term.buf[:term.head])
		raw = string(out)
	}
	return ansiRe.ReplaceAllString(raw, "")
}

// Reset forgets captured output so later assertions only see new frames
func (term *Terminal) Reset() {
	term.mu.Lock()
	defer term.mu.Unlock()
	term.head = 0
	term.full = false
}

// DumpTail logs the last n bytes of normalized output
func (term *Terminal) DumpTail(n int) {
	s := term.Plain()
	if len(s) > n {
		s = s[len(s)-n:]
	}
	term.t.Logf("--- tail ---\n%s", s)
}

// Cleanup closes the PTY, kills the process and stops the fake servers
func (term *Terminal) Cleanup() {
	if term.pty != nil {
		_ = term.pty.Close()
		term.pty = nil
	}
	if term.tty != nil {
		_ = term.tty.Close()
		term.tty = nil
	}
	if term.cmd != nil && term.cmd.Process != nil {
		_ = term.cmd.Process.Kill()
		_, _ = term.cmd.Process.Wait()
		term.cmd = nil
	}
	term.vpic.Close()
	term.unsplash.Close()
}

func fakeVPIC(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path != "/GetModelsForMake/Tesla" {
		fmt.Fprint(w, `{"Count":0,"Message":"ok","Results":[]}`)
		return
	}
	var results []string
	for i := 1; i <= 12; i++ {
		results = append(results, fmt.Sprintf(`{"Make_ID":441,"Make_Name":"TESLA","Model_ID":%d,"Model_Name":"Roadster %02d"}`, i, i))
	}
	fmt.Fprintf(w, `{"Count":12,"Message":"ok","Results":[%s]}`, strings.Join(results, ","))
}

func fakeUnsplash(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("query") != "Tesla" {
		fmt.Fprint(w, `{"total":0,"results":[]}`)
		return
	}
	fmt.Fprint(w, `{"total":1,"results":[{"urls":{"regular":"https://images.example/tesla.jpg"},"user":{"name":"Ann"},"links":{"html":"https://unsplash.example/p/1"}}]}`)
}
