// Package ui is the interactive terminal front end: pages that draw the
// document, a navigator that turns page actions into store operations, and
// the prompts and terminal helpers they need.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// ConfigureColor sets the color profile used by all Render helpers from the
// terminal behind out (honoring NO_COLOR and CLICOLOR_FORCE).
func ConfigureColor(out *termenv.Output) {
	lipgloss.SetColorProfile(out.EnvColorProfile())
}

// RenderAccent highlights headings and icons.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// RenderPass marks success.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn marks something that needs attention.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderFail marks errors.
func RenderFail(s string) string { return failStyle.Render(s) }

func renderHeader(s string) string { return headerStyle.Render(s) }

func renderMuted(s string) string { return mutedStyle.Render(s) }
