// Package ui formats human-oriented status lines. Lines go to stderr because
// stdout carries MCP frames and JSON results.
package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ANSI color codes
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	Bold   = "\033[1m"
)

// Output receives every Print* line.
var Output io.Writer = os.Stderr

// isTTY reports whether Output is a terminal.
func isTTY() bool {
	f, ok := Output.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func colorize(color, msg string) string {
	if !isTTY() {
		return msg
	}
	return color + msg + Reset
}

func tagged(color, tag, msg string) string {
	return fmt.Sprintf("%s %s", colorize(color, tag), msg)
}

// OK formats a success message with [OK] prefix in green
func OK(msg string) string { return tagged(Green, "[OK]", msg) }

// Error formats an error message with [ERROR] prefix in red
func Error(msg string) string { return tagged(Red, "[ERROR]", msg) }

// Warn formats a warning message with [WARN] prefix in yellow
func Warn(msg string) string { return tagged(Yellow, "[WARN]", msg) }

// Info formats an info message with [INFO] prefix in blue
func Info(msg string) string { return tagged(Blue, "[INFO]", msg) }

// Done formats a completion message with [DONE] prefix in green
func Done(msg string) string { return tagged(Green+Bold, "[DONE]", msg) }

// TitleWithDesc formats a bold section title followed by a description.
func TitleWithDesc(title, desc string) string {
	return tagged(Bold+Cyan, "["+title+"]", desc)
}

// PrintOK prints a success message
func PrintOK(msg string) { writeLine(OK(msg)) }

// PrintError prints an error message
func PrintError(msg string) { writeLine(Error(msg)) }

// PrintWarn prints a warning message
func PrintWarn(msg string) { writeLine(Warn(msg)) }

// PrintInfo prints an info message
func PrintInfo(msg string) { writeLine(Info(msg)) }

// PrintDone prints a completion message
func PrintDone(msg string) { writeLine(Done(msg)) }

// PrintTitle prints a section title
func PrintTitle(title, desc string) { writeLine(TitleWithDesc(title, desc)) }

// PrintIndent prints a continuation line under a tagged one.
func PrintIndent(msg string) { writeLine("     " + msg) }

func writeLine(line string) {
	_, _ = fmt.Fprintln(Output, line)
}
