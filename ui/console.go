// Package ui renders the terminal surface of the chat: message lines,
// history markers, status and error notices. It never touches domain state.
package ui

import (
	"fmt"
	"io"
	"time"

	"tempchat/domain"

	"github.com/gookit/color"
)

// ConsoleRenderer writes colorized lines to a terminal. Message lines follow
// the "HH:MM:SS sender: body" shape in the viewer's local time zone, shared
// by the backfill and the live feed.
type ConsoleRenderer struct {
	out     io.Writer
	colours bool
}

func NewConsoleRenderer(out io.Writer, colours bool) *ConsoleRenderer {
	return &ConsoleRenderer{out: out, colours: colours}
}

func (r *ConsoleRenderer) Message(m domain.Message) {
	head := fmt.Sprintf("%s %s:", m.At.Local().Format(time.TimeOnly), m.Sender)
	if r.colours {
		head = color.New(color.FgCyan).Render(head)
	}
	fmt.Fprintf(r.out, "%s %s\n", head, m.Body)
}

func (r *ConsoleRenderer) Notice(text string) {
	r.line(text, color.New(color.FgGray))
}

func (r *ConsoleRenderer) Status(text string) {
	r.line(text, color.New(color.FgGreen))
}

func (r *ConsoleRenderer) Alert(text string) {
	r.line(text, color.New(color.FgRed))
}

// Prompt writes without a trailing newline so input happens on the same line.
func (r *ConsoleRenderer) Prompt(text string) {
	fmt.Fprint(r.out, text)
}

func (r *ConsoleRenderer) Farewell() {
	r.line("Goodbye!", color.New(color.FgRed))
}

func (r *ConsoleRenderer) line(text string, style color.Style) {
	if r.colours {
		text = style.Render(text)
	}
	fmt.Fprintln(r.out, text)
}
