// Package shell implements the interactive crossgen prompt.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"

	"github.com/acarlson/crossgen/config"
	"github.com/acarlson/crossgen/grid"
	"github.com/acarlson/crossgen/render"
	"github.com/acarlson/crossgen/solver"
)

type ShellController struct {
	l   *readline.Instance
	cfg *config.Config

	curGrid   *grid.Grid
	curSolver *solver.Solver
	curFill   solver.Assignment
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func usage(w io.Writer) {
	io.WriteString(w, "commands:\n")
	io.WriteString(w, "load <structure> <words> - load a grid structure file and a word list\n")
	io.WriteString(w, "solve - fill the loaded grid\n")
	io.WriteString(w, "show - print the current fill\n")
	io.WriteString(w, "save <path.png> - save the current fill as an image\n")
	io.WriteString(w, "set <option> <value> - change threads, time-limit, cell-size, cell-border\n")
	io.WriteString(w, "help - this message\n")
	io.WriteString(w, "exit - leave the shell\n")
}

func NewShellController(cfg *config.Config) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mcrossgen>\033[0m ",
		HistoryFile:     filepath.Join(os.TempDir(), "crossgen_readline.tmp"),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		AutoComplete:        completer(),
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	return &ShellController{l: l, cfg: cfg}
}

func completer() readline.AutoCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("load"),
		readline.PcItem("solve"),
		readline.PcItem("show"),
		readline.PcItem("save"),
		readline.PcItem("set",
			readline.PcItem("threads"),
			readline.PcItem("time-limit"),
			readline.PcItem("cell-size"),
			readline.PcItem("cell-border"),
		),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.l.Stdout())
}

func (sc *ShellController) showError(err error) {
	showMessage("Error: "+err.Error(), sc.l.Stderr())
}

func (sc *ShellController) load(structure, words string) error {
	g, err := grid.New(structure, words)
	if err != nil {
		return err
	}
	sc.curGrid = g
	sc.curSolver = solver.New(g)
	sc.curFill = nil
	log.Debug().Int("slots", len(g.Variables())).Int("words", len(g.Words())).
		Msg("loaded grid")
	sc.showMessage(render.Text(g, nil))
	return nil
}

func (sc *ShellController) solve() error {
	if sc.curSolver == nil {
		return errors.New("please load a grid first with the `load` command")
	}
	sc.curSolver.SetThreads(sc.cfg.GetInt("threads"))
	ctx := context.Background()
	if limit := sc.cfg.GetDuration("time-limit"); limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}
	start := time.Now()
	fill, err := sc.curSolver.Solve(ctx)
	if err != nil {
		if errors.Is(err, solver.ErrNoSolution) || errors.Is(err, context.DeadlineExceeded) {
			sc.showMessage("No solution.")
			return nil
		}
		return err
	}
	sc.curFill = fill
	log.Debug().Dur("elapsed", time.Since(start)).Msg("solved")
	sc.showMessage(render.Text(sc.curGrid, fill))
	return nil
}

func (sc *ShellController) save(path string) error {
	if sc.curFill == nil {
		return errors.New("nothing to save; run `solve` first")
	}
	opts := render.ImageOptions{
		CellSize:   sc.cfg.GetInt("cell-size"),
		CellBorder: sc.cfg.GetInt("cell-border"),
	}
	if err := render.SaveImage(sc.curGrid, sc.curFill, path, opts); err != nil {
		return err
	}
	sc.showMessage("Saved " + path)
	return nil
}

func (sc *ShellController) set(option, value string) error {
	switch option {
	case "threads", "time-limit", "cell-size", "cell-border", "debug":
		sc.cfg.Set(option, value)
		sc.showMessage(fmt.Sprintf("%s is now %s", option, value))
		return nil
	}
	return fmt.Errorf("unknown option %q", option)
}

type shellcmd struct {
	cmd  string
	args []string
}

var errNoData = errors.New("no data in line")

func extractFields(line string) (*shellcmd, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errNoData
	}
	return &shellcmd{cmd: fields[0], args: fields[1:]}, nil
}

func (sc *ShellController) execute(line string) error {
	cmd, err := extractFields(line)
	if err != nil {
		if errors.Is(err, errNoData) {
			return nil
		}
		return err
	}
	switch cmd.cmd {
	case "load":
		if len(cmd.args) != 2 {
			return errors.New("usage: load <structure> <words>")
		}
		return sc.load(cmd.args[0], cmd.args[1])
	case "solve":
		return sc.solve()
	case "show":
		if sc.curGrid == nil {
			return errors.New("please load a grid first with the `load` command")
		}
		sc.showMessage(render.Text(sc.curGrid, sc.curFill))
		return nil
	case "save":
		if len(cmd.args) != 1 {
			return errors.New("usage: save <path.png>")
		}
		return sc.save(cmd.args[0])
	case "set":
		if len(cmd.args) != 2 {
			return errors.New("usage: set <option> <value>")
		}
		return sc.set(cmd.args[0], cmd.args[1])
	case "help":
		usage(sc.l.Stdout())
		return nil
	default:
		return fmt.Errorf("unrecognized command %q; try `help`", cmd.cmd)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "exit" || line == "bye" {
			sig <- syscall.SIGINT
			break
		}
		if err := sc.execute(line); err != nil {
			sc.showError(err)
		}
	}
	log.Debug().Msg("Exiting readline loop...")
}
