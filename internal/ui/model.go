package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"carlens/internal/config"
	"carlens/internal/domain"
	"carlens/internal/session"
	"carlens/internal/ui/views"
)

// Lookup runs one branch of a fetch cycle and reports its outcome
type Lookup interface {
	Records(ctx context.Context, token domain.Token, carMake string) domain.BranchEvent
	Image(ctx context.Context, token domain.Token, carMake string) domain.BranchEvent
	Kind() domain.RecordsKind
}

// Model represents the UI state
type Model struct {
	ctx    context.Context
	config *config.Config
	store  *session.Store
	lookup Lookup
	log    *zap.Logger

	width  int
	height int

	cursor    int
	pane      views.Pane
	searching bool
	showHelp  bool
	status    string

	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	renderer *views.Renderer
	pager    *Pager
}

// NewModel creates a new UI model. The store owns the presentation state;
// the model only drives it and renders snapshots of it.
func NewModel(ctx context.Context, cfg *config.Config, store *session.Store, lookup Lookup, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "Enter a car make"
	ti.CharLimit = 64
	ti.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		ctx:      ctx,
		config:   cfg,
		store:    store,
		lookup:   lookup,
		log:      logger.Named("ui"),
		input:    ti,
		spinner:  sp,
		help:     help.New(),
		keys:     newKeyMap(),
		renderer: views.NewRenderer(),
		pager:    NewPager(),
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.pager.SetProgram(p)
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// narrow reports whether the single-pane layout is active
func (m *Model) narrow() bool {
	return m.width > 0 && m.width < m.config.UISettings.NarrowWidth
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)

	case branchMsg:
		state, changed := m.store.Apply(msg.event)
		if !changed {
			m.log.Debug("ignored stale branch result",
				zap.Uint64("event_token", uint64(msg.event.CycleToken())),
				zap.Uint64("current_token", uint64(state.Token)))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pagerMsg:
		if msg.err != nil {
			m.log.Warn("pager failed", zap.Error(msg.err))
			m.status = fmt.Sprintf("Pager unavailable: %v", msg.err)
			return m, clearStatusAfter(3 * time.Second)
		}
		return m, nil

	case clearStatusMsg:
		m.status = ""
		return m, nil
	}

	if m.searching {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "esc", "?", "q":
			m.showHelp = false
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.store.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Up):
		if m.pane == views.PaneList && m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.pane == views.PaneList && m.cursor < len(m.config.Makes)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.pane != views.PaneList || len(m.config.Makes) == 0 {
			return m, nil
		}
		return m, m.selectMake(m.config.Makes[m.cursor])

	case key.Matches(msg, m.keys.Switch):
		if m.pane == views.PaneList {
			m.pane = views.PaneDetail
		} else {
			m.pane = views.PaneList
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.pane = views.PaneList
		return m, nil

	case key.Matches(msg, m.keys.Pager):
		return m, m.openPager()
	}

	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.store.Close()
		return m, tea.Quit

	case tea.KeyEsc:
		m.searching = false
		m.input.Blur()
		m.input.Reset()
		return m, nil

	case tea.KeyEnter:
		text := m.input.Value()
		m.searching = false
		m.input.Blur()
		m.input.Reset()
		return m, m.selectMake(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// selectMake resets the session for carMake and starts both branches.
// Blank input is rejected by the store and starts nothing.
func (m *Model) selectMake(carMake string) tea.Cmd {
	cycle, err := m.store.Begin(m.ctx, carMake)
	if err != nil {
		m.log.Debug("selection rejected", zap.String("input", carMake), zap.Error(err))
		return nil
	}

	if m.narrow() {
		m.pane = views.PaneDetail
	}

	return tea.Batch(
		m.recordsCmd(cycle),
		m.imageCmd(cycle),
	)
}

// recordsCmd returns a command that runs the records branch for cycle
func (m *Model) recordsCmd(cycle session.Cycle) tea.Cmd {
	return func() tea.Msg {
		return branchMsg{event: m.lookup.Records(cycle.Ctx, cycle.Token, cycle.Manufacturer)}
	}
}

// imageCmd returns a command that runs the image branch for cycle
func (m *Model) imageCmd(cycle session.Cycle) tea.Cmd {
	return func() tea.Msg {
		return branchMsg{event: m.lookup.Image(cycle.Ctx, cycle.Token, cycle.Manufacturer)}
	}
}

// openPager returns a command that shows the current results in the pager
func (m *Model) openPager() tea.Cmd {
	state := m.store.Snapshot()
	if state.Manufacturer == "" || state.Loading {
		m.status = "Nothing to page yet"
		return clearStatusAfter(2 * time.Second)
	}

	content := PagerContent(state, m.lookup.Kind())
	return func() tea.Msg {
		return pagerMsg{err: m.pager.Show(strings.NewReader(content))}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	maxRecords := m.config.MaxResults
	if m.narrow() {
		maxRecords = m.config.UISettings.NarrowMaxResults
	}

	state := views.ViewState{
		Width:      m.width,
		Height:     m.height,
		Narrow:     m.narrow(),
		Pane:       m.pane,
		Makes:      m.config.Makes,
		Cursor:     m.cursor,
		Searching:  m.searching,
		Spinner:    m.spinner.View(),
		Session:    m.store.Snapshot(),
		Kind:       m.lookup.Kind(),
		MaxRecords: maxRecords,
		ShowHelp:   m.showHelp,
		Status:     m.status,
	}
	if m.searching {
		state.SearchInput = m.input.View()
	}
	if !m.showHelp {
		state.HelpLine = m.help.View(m.keys)
	}

	return m.renderer.Render(state)
}
