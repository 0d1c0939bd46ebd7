package errors

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

func init() {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		color.NoColor = true
	}
}

var (
	errLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	codeLabel = color.New(color.FgWhite, color.Bold).SprintFunc()
	hintLabel = color.New(color.FgGreen).SprintFunc()
	dimText   = color.New(color.FgHiBlack).SprintFunc()
	catText   = color.New(color.FgCyan).SprintFunc()
)

// Format returns a formatted error message for terminal display.
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(errLabel("ERROR "))
	if e.Code != "" {
		b.WriteString(codeLabel(e.Code + ": "))
	}
	b.WriteString(e.Message)
	b.WriteString(dimText(" [" + string(e.Category) + "]"))
	b.WriteString("\n")

	if e.Detail != "" {
		b.WriteString("\n  ")
		b.WriteString(e.Detail)
		b.WriteString("\n")
	}

	if e.Wrapped != nil {
		b.WriteString("\n  ")
		b.WriteString(catText("cause: "))
		b.WriteString(e.Wrapped.Error())
		b.WriteString("\n")
	}

	if e.Suggestion != "" {
		b.WriteString("\n  ")
		b.WriteString(hintLabel("hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n")
	}

	if e.DocURL != "" {
		b.WriteString("\n  ")
		b.WriteString(dimText("docs: " + e.DocURL))
		b.WriteString("\n")
	}

	return b.String()
}
