package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/acarlson/crossgen/config"
	"github.com/acarlson/crossgen/grid"
	"github.com/acarlson/crossgen/render"
	"github.com/acarlson/crossgen/shell"
	"github.com/acarlson/crossgen/solver"
)

var GitVersion string

//go:embed crossgen.txt
var banner string

func usage() {
	fmt.Fprintln(os.Stderr, "usage: crossgen [flags] structure words [output.png]")
	fmt.Fprintln(os.Stderr, "       crossgen -shell")
}

func main() {
	cfg := config.DefaultConfig()
	if err := cfg.Load(os.Args[1:]); err != nil {
		usage()
		os.Exit(2)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	var logger zerolog.Logger
	if cfg.GetBool("debug") {
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")

	if cfg.GetBool("shell") {
		fmt.Println(banner)
		if GitVersion != "" {
			fmt.Println(GitVersion)
		}
		sc := shell.NewShellController(cfg)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		go sc.Loop(sig)
		<-sig
		return
	}

	args := cfg.Args()
	if len(args) != 2 && len(args) != 3 {
		usage()
		os.Exit(2)
	}

	g, err := grid.New(args[0], args[1])
	if err != nil {
		log.Error().Err(err).Msg("could not build puzzle")
		os.Exit(2)
	}

	s := solver.New(g)
	s.SetThreads(cfg.GetInt("threads"))

	ctx := context.Background()
	if limit := cfg.GetDuration("time-limit"); limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	fill, err := s.Solve(ctx)
	if err != nil {
		if errors.Is(err, solver.ErrNoSolution) || errors.Is(err, context.DeadlineExceeded) {
			fmt.Println("No solution.")
			os.Exit(1)
		}
		log.Error().Err(err).Msg("solve aborted")
		os.Exit(1)
	}

	fmt.Print(render.Text(g, fill))
	if len(args) == 3 {
		opts := render.ImageOptions{
			CellSize:   cfg.GetInt("cell-size"),
			CellBorder: cfg.GetInt("cell-border"),
		}
		if err := render.SaveImage(g, fill, args[2], opts); err != nil {
			log.Error().Err(err).Msg("could not save image")
			os.Exit(2)
		}
	}
}
