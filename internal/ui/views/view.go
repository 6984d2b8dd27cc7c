package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"carlens/internal/domain"
	"carlens/internal/session"
)

// Pane identifies which half of the screen has focus on narrow terminals
type Pane int

const (
	PaneList Pane = iota
	PaneDetail
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width       int
	Height      int
	Narrow      bool
	Pane        Pane
	Makes       []string
	Cursor      int
	Searching   bool
	SearchInput string
	Spinner     string
	Session     session.State
	Kind        domain.RecordsKind
	MaxRecords  int
	HelpLine    string
	ShowHelp    bool
	Status      string
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{styles: NewStyles()}
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	content.WriteString(r.renderTitle(state))
	content.WriteString("\n")

	if state.Searching {
		content.WriteString(r.styles.Prompt.Render("Search: "))
		content.WriteString(state.SearchInput)
		content.WriteString("\n\n")
	}

	if state.ShowHelp {
		content.WriteString(r.renderHelpContent())
	} else {
		content.WriteString(r.renderPanes(state))
	}

	if state.Status != "" {
		content.WriteString("\n")
		content.WriteString(r.styles.Dim.Render(state.Status))
	}

	if state.HelpLine != "" {
		content.WriteString("\n\n")
		content.WriteString(r.styles.Help.Render(state.HelpLine))
	}

	mainStyle := r.styles.Main
	if state.Height > 0 {
		mainStyle = mainStyle.MaxHeight(state.Height)
	}
	return mainStyle.Render(content.String())
}

func (r *Renderer) renderTitle(state ViewState) string {
	logo := r.styles.Title.Render("carlens")
	if !state.Session.Loading {
		return logo
	}

	indicator := r.styles.StatusLoad.Render(fmt.Sprintf("%s Loading %s", state.Spinner, state.Session.Manufacturer))
	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	padding := termWidth - 4 - lipgloss.Width(logo) - lipgloss.Width(indicator)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + indicator
}

func (r *Renderer) renderPanes(state ViewState) string {
	if state.Narrow {
		if state.Pane == PaneDetail {
			return r.renderDetail(state, true)
		}
		return r.renderMakes(state, true)
	}

	listWidth := 22
	detailWidth := state.Width - listWidth - 10
	if detailWidth < 30 {
		detailWidth = 30
	}

	list := r.renderMakes(state, state.Pane == PaneList)
	detail := lipgloss.NewStyle().Width(detailWidth).Render(r.renderDetail(state, state.Pane == PaneDetail))
	return lipgloss.JoinHorizontal(lipgloss.Top, list, " ", detail)
}

func (r *Renderer) renderMakes(state ViewState, focused bool) string {
	lines := []string{r.styles.PaneTitle.Render("Car makes")}
	for i, name := range state.Makes {
		line := "  " + name
		switch {
		case i == state.Cursor && focused:
			line = r.styles.MakeSelected.Render("▶ " + name)
		case name == state.Session.Manufacturer:
			line = r.styles.MakeActive.Render("• " + name)
		default:
			line = r.styles.Make.Render(line)
		}
		lines = append(lines, line)
	}

	style := r.styles.Pane
	if focused {
		style = r.styles.PaneFocused
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (r *Renderer) renderDetail(state ViewState, focused bool) string {
	s := state.Session
	lines := []string{}

	switch {
	case s.Manufacturer == "":
		lines = append(lines, r.styles.PaneTitle.Render("No make selected"))
		lines = append(lines, r.styles.Dim.Render("Pick a make from the list or press / to search."))
	default:
		lines = append(lines, r.styles.PaneTitle.Render(fmt.Sprintf("%s %s", s.Manufacturer, state.Kind.Noun())))
	}

	if s.Loading {
		lines = append(lines, r.styles.StatusLoad.Render(state.Spinner+" Loading..."))
	}

	if s.Error != "" {
		lines = append(lines, r.styles.StatusError.Render(s.Error))
	}

	records := s.Records
	if state.MaxRecords > 0 && len(records) > state.MaxRecords {
		records = records[:state.MaxRecords]
	}
	if len(records) > 0 {
		lines = append(lines, "")
		for i, rec := range records {
			lines = append(lines, fmt.Sprintf("%s %s",
				r.styles.RecordIndex.Render(fmt.Sprintf("%2d.", i+1)),
				r.styles.Record.Render(rec.Name)))
		}
	}

	if url := s.ImageURL(); url != "" {
		lines = append(lines, "")
		lines = append(lines, r.styles.ImageURL.Render(url))
		if s.Image.Author != "" {
			lines = append(lines, r.styles.Attribution.Render("Photo by "+s.Image.Author+" on Unsplash"))
		}
	}

	style := r.styles.Pane
	if focused {
		style = r.styles.PaneFocused
	}
	return style.Render(strings.Join(lines, "\n"))
}

// renderHelpContent renders the help information
func (r *Renderer) renderHelpContent() string {
	var help strings.Builder

	help.WriteString(r.styles.Title.Render("carlens Help"))
	help.WriteString("\n")

	row := func(key, desc string) {
		help.WriteString(fmt.Sprintf("  %-12s %s\n", r.styles.HelpKey.Render(key), r.styles.HelpDesc.Render(desc)))
	}

	help.WriteString(r.styles.HelpSection.Render("Navigation"))
	help.WriteString("\n")
	row("↑/↓, j/k", "Move through car makes")
	row("Enter", "Look up the highlighted make")
	row("Tab", "Switch between list and details")
	row("Esc", "Back to the list (narrow layout)")

	help.WriteString(r.styles.HelpSection.Render("Search"))
	help.WriteString("\n")
	row("/", "Type a car make")
	row("Enter", "Submit the search")
	row("Esc", "Cancel the search")

	help.WriteString(r.styles.HelpSection.Render("Other"))
	help.WriteString("\n")
	row("p", "Open results in pager")
	row("?", "Toggle this help")
	row("q", "Quit")

	return r.styles.HelpBox.Render(strings.TrimRight(help.String(), "\n"))
}
