package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// status prints the user-facing progress lines: green when a stage
// succeeded, yellow when it degraded, red when it failed.
type status struct {
	out  io.Writer
	ok   *color.Color
	warn *color.Color
	fail *color.Color
}

func newStatus(out io.Writer) *status {
	return &status{
		out:  out,
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed, color.Bold),
	}
}

func (s *status) Info(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *status) Success(format string, args ...any) {
	s.ok.Fprintf(s.out, format+"\n", args...)
}

func (s *status) Warn(format string, args ...any) {
	s.warn.Fprintf(s.out, format+"\n", args...)
}

func (s *status) Error(format string, args ...any) {
	s.fail.Fprintf(s.out, format+"\n", args...)
}

// Text writes preformatted text as is.
func (s *status) Text(text string) {
	io.WriteString(s.out, text)
}
