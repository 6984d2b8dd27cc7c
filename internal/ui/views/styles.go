package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title        lipgloss.Style
	Dim          lipgloss.Style
	Help         lipgloss.Style
	Main         lipgloss.Style
	Pane         lipgloss.Style
	PaneFocused  lipgloss.Style
	PaneTitle    lipgloss.Style
	Make         lipgloss.Style
	MakeSelected lipgloss.Style
	MakeActive   lipgloss.Style
	Record       lipgloss.Style
	RecordIndex  lipgloss.Style
	ImageURL     lipgloss.Style
	Attribution  lipgloss.Style
	Prompt       lipgloss.Style
	StatusError  lipgloss.Style
	StatusLoad   lipgloss.Style
	HelpBox      lipgloss.Style
	HelpSection  lipgloss.Style
	HelpKey      lipgloss.Style
	HelpDesc     lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Dim:  lipgloss.NewStyle().Faint(true),
		Help: lipgloss.NewStyle().Faint(true),
		Main: lipgloss.NewStyle().
			Padding(1, 2),
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		PaneFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1),
		PaneTitle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginBottom(1),
		Make:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		MakeSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true).Background(lipgloss.Color("238")),
		MakeActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		Record:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		RecordIndex:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		ImageURL:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Underline(true),
		Attribution:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Prompt:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusError:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusLoad:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		HelpBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(1).
			BorderForeground(lipgloss.Color("241")),
		HelpSection: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1),
		HelpKey:     lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		HelpDesc:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}
