package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"carlens/internal/domain"
	"carlens/internal/session"
)

// Pager shows long content outside the Bubble Tea screen
type Pager struct {
	program *tea.Program
	command string
}

// NewPager creates a pager running `less -R` unless CARLENS_PAGER overrides it
func NewPager() *Pager {
	cmd := os.Getenv("CARLENS_PAGER")
	if cmd == "" {
		cmd = "less"
	}
	return &Pager{command: cmd}
}

// SetProgram sets the program reference for terminal management
func (p *Pager) SetProgram(prog *tea.Program) {
	p.program = prog
}

// Available reports whether the pager binary can be found
func (p *Pager) Available() bool {
	_, err := exec.LookPath(p.command)
	return err == nil
}

// Show pages r, releasing the terminal while the pager runs
func (p *Pager) Show(r io.Reader) error {
	if p.program == nil {
		return fmt.Errorf("program not set")
	}
	if !p.Available() {
		return fmt.Errorf("%s not found in PATH", p.command)
	}
	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		fmt.Print("\x1b[2J\x1b[H")
		time.Sleep(150 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	args := []string{}
	if p.command == "less" {
		args = append(args, "-R")
	}
	cmd := exec.Command(p.command, args...)
	cmd.Stdin = r
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// PagerContent formats a settled session for the pager
func PagerContent(s session.State, kind domain.RecordsKind) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", s.Manufacturer, kind.Noun())
	if s.Error != "" {
		fmt.Fprintf(&b, "! %s\n\n", s.Error)
	}
	for i, r := range s.Records {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, r.Name)
	}
	if url := s.ImageURL(); url != "" {
		fmt.Fprintf(&b, "\nImage: %s\n", url)
		if s.Image.Author != "" {
			fmt.Fprintf(&b, "Photo by %s on Unsplash\n", s.Image.Author)
		}
	}
	return b.String()
}
