// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ui provides formatted output for wdctl.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	Green  = color.New(color.FgGreen).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	Dim    = color.New(color.Faint).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// Output is the destination for UI output.
// Defaults to os.Stdout but can be overridden for testing.
var Output io.Writer = os.Stdout

// SessionInfo is a stored session for display.
type SessionInfo struct {
	Name      string
	ID        string
	URL       string
	Browser   string
	CreatedAt string
	Current   bool
}

// StateBadge returns a colored indicator for a driver state.
func StateBadge(state string) string {
	switch state {
	case "active":
		return Green("● Active")
	case "ended":
		return Dim("○ Ended")
	default:
		return Yellow("○ No Session")
	}
}

// PrintSessionList prints stored sessions, marking the current one.
func PrintSessionList(sessions []SessionInfo) {
	if len(sessions) == 0 {
		fmt.Fprintln(Output, "No sessions.")
		return
	}
	fmt.Fprintln(Output, Bold("Sessions:"))
	for _, s := range sessions {
		marker := " "
		if s.Current {
			marker = Green("*")
		}
		fmt.Fprintf(Output, "%s %s %s %s %s\n",
			marker,
			Cyan(s.Name),
			s.ID,
			Blue(s.URL),
			Dim(fmt.Sprintf("(%s, %s)", s.Browser, s.CreatedAt)),
		)
	}
}

// PrintSession prints the details of one session.
func PrintSession(s SessionInfo, state string) {
	fmt.Fprintf(Output, "%s %s\n", Bold("Session:"), Cyan(s.Name))
	fmt.Fprintf(Output, "%s %s\n", Bold("ID:"), s.ID)
	fmt.Fprintf(Output, "%s %s\n", Bold("Remote:"), Blue(s.URL))
	if s.Browser != "" {
		fmt.Fprintf(Output, "%s %s\n", Bold("Browser:"), s.Browser)
	}
	fmt.Fprintf(Output, "%s %s\n", Bold("State:"), StateBadge(state))
}

// PrintElements prints element ids, one per line.
func PrintElements(ids []string) {
	if len(ids) == 0 {
		fmt.Fprintln(Output, "No elements.")
		return
	}
	for i, id := range ids {
		fmt.Fprintf(Output, "%s %s\n", Dim(fmt.Sprintf("[%d]", i)), id)
	}
}

// PrintValue prints a command result.
func PrintValue(v any) {
	fmt.Fprintln(Output, v)
}

// PrintSuccess prints a success message with green checkmark.
func PrintSuccess(message string) {
	fmt.Fprintf(Output, "%s %s\n", Green("✓"), message)
}

// PrintError prints an error message with red X.
func PrintError(message string) {
	fmt.Fprintf(Output, "%s %s\n", Red("✗"), message)
}

func PrintWarning(message string) {
	fmt.Fprintf(Output, "%s %s\n", Yellow("⚠"), message)
}

func PrintInfo(message string) {
	fmt.Fprintf(Output, "%s %s\n", Blue("•"), message)
}
