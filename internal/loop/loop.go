// Package loop runs a single local game in the current terminal.
package loop

import (
	"bufio"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/tomz197/whackamole/internal/draw"
	"github.com/tomz197/whackamole/internal/engine"
	"github.com/tomz197/whackamole/internal/highscore"
	"github.com/tomz197/whackamole/internal/loop/client"
	"github.com/tomz197/whackamole/internal/loop/server"
)

// Options configures a local game.
type Options struct {
	Rules        engine.Config
	Tracker      *highscore.Tracker // Optional all-time record
	Username     string
	Profile      termenv.Profile
	TermSizeFunc draw.TermSizeFunc
	Logger       *log.Logger
}

// Run plays on a private server with one client until the player quits.
// The same client code serves SSH sessions, so local play looks identical.
func Run(r *bufio.Reader, w io.Writer, opts Options) error {
	gs := server.NewServer(opts.Rules, opts.Tracker, server.Options{Logger: opts.Logger})

	c, err := client.NewClient(gs, r, w, client.ClientOptions{
		TermSizeFunc: opts.TermSizeFunc,
		Username:     opts.Username,
		Profile:      opts.Profile,
	})
	if err != nil {
		return err
	}
	if err := c.Run(); err != nil {
		return err
	}

	gs.Shutdown(time.Second)
	return nil
}
