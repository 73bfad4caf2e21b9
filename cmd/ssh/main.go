package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/whackamole/internal/config"
	"github.com/tomz197/whackamole/internal/draw"
	"github.com/tomz197/whackamole/internal/highscore"
	"github.com/tomz197/whackamole/internal/loop/client"
	loopconfig "github.com/tomz197/whackamole/internal/loop/config"
	"github.com/tomz197/whackamole/internal/loop/server"
)

const (
	defaultHost          = "::"
	defaultPort          = "2222"
	defaultHostKeyPath   = "/app/keys/host_key"
	defaultHighScoreFile = "/app/data/highscore"
	playerShutdownWait   = 15 * time.Second
	serverShutdownWait   = 5 * time.Second
)

func main() {
	logger := loopconfig.NewLogger(os.Stderr, "ssh")
	if err := run(logger); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}

func run(logger *log.Logger) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	scorePath := config.GetEnv("HIGHSCORE_FILE", defaultHighScoreFile)
	logger.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "highscore", scorePath)

	rules, err := loopconfig.Engine()
	if err != nil {
		return fmt.Errorf("game rules: %w", err)
	}
	tracker, err := highscore.NewTracker(highscore.NewFileStore(scorePath), logger)
	if err != nil {
		return err
	}

	// One server hosts an isolated game per SSH session
	gameServer := server.NewServer(rules, tracker, server.Options{Logger: logger.WithPrefix("game")})
	logger.Info("Game server started", "slots", rules.Slots, "max_misses", rules.MaxMisses, "best", tracker.Best().Score)

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gameMiddleware(gameServer, logger),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting SSH server", "addr", net.JoinHostPort(host, port))
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")

		// Notify players and wait for them to disconnect
		logger.Info("Notifying connected players about shutdown...", "players", gameServer.Clients())
		gameServer.Shutdown(playerShutdownWait)
		logger.Info("Game server stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownWait)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// gameMiddleware handles SSH sessions and runs the game client.
func gameMiddleware(gameServer *server.Server, logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			logger.Info("New game session", "user", sess.User(), "terminal", pty.Term,
				"width", pty.Window.Width, "height", pty.Window.Height)

			// Create a terminal size tracker that updates on window changes
			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

			// Listen for window size changes in a goroutine
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			reader := bufio.NewReader(sess)
			clientOpts := client.ClientOptions{
				TermSizeFunc: sizeTracker.getSize,
				Username:     sess.User(),
				Profile:      profileFor(pty.Term),
			}

			c, err := client.NewClient(gameServer, reader, sess, clientOpts)
			if err != nil {
				logger.Warn("Session rejected", "user", sess.User(), "err", err)
				fmt.Fprintln(sess, "Server is shutting down. Please reconnect in a moment.")
				return
			}
			if err := c.Run(); err != nil {
				logger.Error("Game error", "user", sess.User(), "err", err)
			}

			logger.Info("Session ended", "user", sess.User())
			next(sess)
		}
	}
}

// profileFor picks a color profile from the client's TERM.
func profileFor(term string) termenv.Profile {
	switch term {
	case "", "dumb":
		return termenv.Ascii
	case "linux", "vt100", "vt220", "xterm":
		return termenv.ANSI
	default:
		return termenv.ANSI256
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
