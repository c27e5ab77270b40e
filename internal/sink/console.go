package sink

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Terminal colors, ANSI codes so they follow the user's palette.
const (
	colorName  lipgloss.Color = "6" // Cyan
	colorValue lipgloss.Color = "7" // White
	colorMuted lipgloss.Color = "8" // Gray
	colorGood  lipgloss.Color = "2" // Green
	colorBad   lipgloss.Color = "1" // Red
)

// Console prints one styled line per delivery. Values listed as
// placeholders are dimmed.
type Console struct {
	out          io.Writer
	now          func() time.Time
	placeholders map[string]bool

	timeStyle  lipgloss.Style
	nameStyle  lipgloss.Style
	valueStyle lipgloss.Style
	mutedStyle lipgloss.Style
	goodStyle  lipgloss.Style
	badStyle   lipgloss.Style
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer, placeholders ...string) *Console {
	c := &Console{
		out:          out,
		now:          time.Now,
		placeholders: make(map[string]bool, len(placeholders)),
		timeStyle:    lipgloss.NewStyle().Foreground(colorMuted),
		nameStyle:    lipgloss.NewStyle().Foreground(colorName).Width(22),
		valueStyle:   lipgloss.NewStyle().Foreground(colorValue).Bold(true),
		mutedStyle:   lipgloss.NewStyle().Foreground(colorMuted),
		goodStyle:    lipgloss.NewStyle().Foreground(colorGood).Bold(true),
		badStyle:     lipgloss.NewStyle().Foreground(colorBad).Bold(true),
	}
	for _, p := range placeholders {
		c.placeholders[p] = true
	}
	return c
}

func (c *Console) Deliver(name, value string) {
	fmt.Fprintf(c.out, "%s %s %s\n",
		c.timeStyle.Render(c.now().Format("15:04:05")),
		c.nameStyle.Render(name),
		c.styleValue(name, value),
	)
}

func (c *Console) styleValue(name, value string) string {
	if name == "connection" {
		if value == "true" {
			return c.goodStyle.Render("connected")
		}
		return c.badStyle.Render("disconnected")
	}
	if c.placeholders[value] {
		return c.mutedStyle.Render(value)
	}
	return c.valueStyle.Render(value)
}

// Table renders name/value pairs as an aligned block, in the given order.
func (c *Console) Table(names []string, values map[string]string) string {
	rows := make([]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			c.nameStyle.Render(name),
			c.styleValue(name, values[name]),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
