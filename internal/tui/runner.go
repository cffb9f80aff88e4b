package tui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/s2quake/vtree/pkg/vtree"
)

// PromptContinue asks a yes/no question on out and reads the answer from
// in. An empty answer means yes. Outside interactive mode the question is
// not asked and the answer is yes.
func PromptContinue(in io.Reader, out io.Writer, message string) bool {
	if !IsInteractive() {
		return true
	}
	return ask(in, out, message)
}

func ask(in io.Reader, out io.Writer, message string) bool {
	fmt.Fprintf(out, "%s [Y/n]: ", message)

	line, _ := bufio.NewReader(in).ReadString('\n')
	response := strings.TrimSpace(line)

	return response == "" || response == "y" || response == "Y"
}

// ProgressDisplay prints start, progress and result lines for a long
// operation.
type ProgressDisplay struct {
	out         io.Writer
	interactive bool

	mu   sync.Mutex
	last int64
}

func NewProgressDisplay(out io.Writer) *ProgressDisplay {
	return &ProgressDisplay{out: out, interactive: IsInteractive()}
}

func (p *ProgressDisplay) Start(message string) {
	if !p.interactive {
		fmt.Fprintln(p.out, message)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", SymbolSpinner, message)
}

// Progress returns a sink that redraws a byte counter in interactive mode
// and stays silent otherwise.
func (p *ProgressDisplay) Progress() vtree.ProgressFunc {
	if !p.interactive {
		return nil
	}
	return func(done, total int64) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.last = done
		if total == vtree.UnknownLength {
			fmt.Fprintf(p.out, "\r  %s", FormatSize(done))
			return
		}
		fmt.Fprintf(p.out, "\r  %s / %s", FormatSize(done), FormatSize(total))
	}
}

func (p *ProgressDisplay) endLine() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last > 0 {
		fmt.Fprintln(p.out)
		p.last = 0
	}
}

func (p *ProgressDisplay) Success(message string) {
	p.endLine()
	fmt.Fprintf(p.out, "%s %s\n", SymbolCheck, message)
}

func (p *ProgressDisplay) Error(message string) {
	p.endLine()
	fmt.Fprintf(p.out, "%s %s\n", SymbolCross, message)
}

// FormatSize renders a byte count with a binary unit.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
