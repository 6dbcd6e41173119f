package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/specialistvlad/vuldesign/internal/ctxlog"
)

const prompt = "vul> "

// prompter is the part of liner.State the read loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Run reads commands with a line editor until quit or end of input. History
// is loaded from and saved to historyPath when it is not empty.
func Run(ctx context.Context, out io.Writer, d *Dispatcher, historyPath string) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(d.Complete)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	fmt.Fprintln(out, "vuldesign console. Type help for a list of commands.")
	err := loop(ctx, out, d, ln)

	if historyPath != "" {
		if f, ferr := os.Create(historyPath); ferr == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		} else {
			ctxlog.FromContext(ctx).Warn("Could not save console history.", "path", historyPath, "error", ferr)
		}
	}
	return err
}

// loop executes one command per line. Command errors are printed and the
// loop continues.
func loop(ctx context.Context, out io.Writer, d *Dispatcher, p prompter) error {
	logger := ctxlog.FromContext(ctx)
	for {
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return errors.Wrap(err, "failed to read console input")
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		p.AppendHistory(line)

		if err := d.Exec(ctx, out, fields); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			logger.Debug("Console command failed.", "command", fields[0], "error", err)
			fmt.Fprintln(out, err)
		}
	}
}
