package utils

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
)

type Print struct {
	step atomic.Int32
	mux  sync.Mutex
	out  io.Writer
}

func NewMessage() *Print {
	return &Print{out: os.Stdout}
}

func NewMessageTo(w io.Writer) *Print {
	return &Print{out: w}
}

func (p *Print) Step(format string, v ...any) {
	n := p.step.Add(1)
	p.println(color.New(color.FgCyan, color.Bold), fmt.Sprintf("Step %d: %s", n, fmt.Sprintf(format, v...)))
}

func (p *Print) Message(format string, v ...any) {
	p.println(color.New(color.Reset), fmt.Sprintf("==> %s", fmt.Sprintf(format, v...)))
}

func (p *Print) Error(format string, v ...any) {
	p.println(color.New(color.FgRed), fmt.Sprintf("==> %s", fmt.Sprintf(format, v...)))
}

func (p *Print) Warn(format string, v ...any) {
	p.println(color.New(color.FgYellow), fmt.Sprintf("==> %s", fmt.Sprintf(format, v...)))
}

// Plain writes the line untouched, for output other tools may parse.
func (p *Print) Plain(format string, v ...any) {
	p.mux.Lock()
	defer p.mux.Unlock()
	fmt.Fprintln(p.out, fmt.Sprintf(format, v...))
}

func (p *Print) println(c *color.Color, line string) {
	p.mux.Lock()
	defer p.mux.Unlock()
	c.Fprintln(p.out, line)
}
