package reporter

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/szsrun/internal/models"
)

var (
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	cyanColor    = lipgloss.Color("#06B6D4")
)

// styles are bound to the reporter's writer so colors are only emitted when
// that writer is a terminal.
type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	dump     lipgloss.Style
	verdicts map[models.Verdict]lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(cyanColor),
		muted: r.NewStyle().Foreground(mutedColor),
		dump:  r.NewStyle().Foreground(mutedColor).PaddingLeft(2),
		verdicts: map[models.Verdict]lipgloss.Style{
			models.VerdictPass:       r.NewStyle().Bold(true).Foreground(successColor),
			models.VerdictTimedOut:   r.NewStyle().Bold(true).Foreground(warningColor),
			models.VerdictIncomplete: r.NewStyle().Bold(true).Foreground(warningColor),
			models.VerdictUserError:  r.NewStyle().Bold(true).Foreground(warningColor),
			models.VerdictFail:       r.NewStyle().Bold(true).Foreground(errorColor),
		},
	}
}

func (s styles) verdict(v models.Verdict) string {
	style, ok := s.verdicts[v]
	if !ok {
		return v.Label()
	}
	return style.Render(v.Label())
}
