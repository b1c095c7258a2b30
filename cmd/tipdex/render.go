package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"tipdex/internal/domain"
)

var (
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	tagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	linkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Underline(true)
)

func entryLine(e domain.Entry) string {
	line := fmt.Sprintf("%s  %s",
		idStyle.Render(fmt.Sprintf("#%-4d", e.ID)),
		titleStyle.Render(e.Title))
	if len(e.Tags) > 0 {
		line += "  " + tagStyle.Render(strings.Join(e.Tags, ", "))
	}
	return line
}

func entryHeader(e domain.Entry) string {
	header := fmt.Sprintf("%s %s",
		idStyle.Render(fmt.Sprintf("#%d", e.ID)),
		titleStyle.Render(e.Title))
	if len(e.Tags) > 0 {
		header += "\n" + tagStyle.Render(strings.Join(e.Tags, ", "))
	}
	return header
}

func linkLine(link string) string {
	return linkStyle.Render(link)
}

// renderMarkdown pretty-prints a tip body for the terminal, falling
// back to the raw markdown if the renderer cannot be set up.
func renderMarkdown(body string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return body
	}
	out, err := r.Render(body)
	if err != nil {
		return body
	}
	return strings.TrimRight(out, "\n")
}
