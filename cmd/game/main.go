package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/tomz197/whackamole/internal/config"
	"github.com/tomz197/whackamole/internal/highscore"
	"github.com/tomz197/whackamole/internal/loop"
	loopconfig "github.com/tomz197/whackamole/internal/loop/config"
)

const defaultHighScoreFile = "whackamole.highscore"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	rules, err := loopconfig.Engine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the game, so logs go to LOG_FILE or nowhere
	logOut, closeLog, err := loopconfig.OpenLogFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	logger := loopconfig.NewLogger(logOut, "game")

	store := highscore.NewFileStore(config.GetEnv("HIGHSCORE_FILE", defaultHighScoreFile))
	tracker, err := highscore.NewTracker(store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load high score: %v\n", err)
		os.Exit(1)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	reader := bufio.NewReader(os.Stdin)
	err = loop.Run(reader, os.Stdout, loop.Options{
		Rules:    rules,
		Tracker:  tracker,
		Username: config.GetEnv("USER", "player"),
		Profile:  termenv.EnvColorProfile(),
		Logger:   logger,
	})
	if err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}
