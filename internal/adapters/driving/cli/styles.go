package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

// Palette shared by every command.
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#06B6D4")
	colorMuted     = lipgloss.Color("#6C7086")
	colorSuccess   = lipgloss.Color("#A6E3A1")
	colorWarning   = lipgloss.Color("#F9E2AF")
	colorError     = lipgloss.Color("#F38BA8")
)

// styles holds the lipgloss styles for one output stream. Colour is only
// emitted when the stream is a terminal.
type styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Score   lipgloss.Style
}

func newStyles(w io.Writer) *styles {
	r := lipgloss.NewRenderer(w)
	return &styles{
		Title:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		Header:  r.NewStyle().Bold(true).Foreground(colorSecondary),
		Muted:   r.NewStyle().Foreground(colorMuted),
		Success: r.NewStyle().Foreground(colorSuccess),
		Warning: r.NewStyle().Foreground(colorWarning),
		Error:   r.NewStyle().Foreground(colorError),
		Score:   r.NewStyle().Bold(true),
	}
}

// health renders a health status in its colour.
func (s *styles) health(status domain.HealthStatus) string {
	label := string(status)
	switch status {
	case domain.HealthOK:
		return s.Success.Render(label)
	case domain.HealthWarning:
		return s.Warning.Render(label)
	case domain.HealthError:
		return s.Error.Render(label)
	default:
		return s.Muted.Render(label)
	}
}
