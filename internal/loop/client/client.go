package client

import (
	"bufio"
	"io"
	"time"

	"github.com/muesli/termenv"

	"github.com/tomz197/whackamole/internal/draw"
	"github.com/tomz197/whackamole/internal/engine"
	"github.com/tomz197/whackamole/internal/input"
	"github.com/tomz197/whackamole/internal/loop/config"
	"github.com/tomz197/whackamole/internal/loop/server"
)

// Client handles rendering and input for a single connection.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	rules        engine.Config
	state        *ClientState
	theme        *draw.Theme
	frame        *draw.Frame // Pending screen update
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	now          func() time.Time
	termSizeFunc draw.TermSizeFunc
	termWidth    int
	termHeight   int
	lastWidth    int // Size of the last drawn block
	lastHeight   int
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Profile      termenv.Profile // Color profile; zero value is TrueColor
}

// NewClient registers with the given server and creates a client for it.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) (*Client, error) {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.StdoutSize
	}

	handle, err := gs.RegisterClient(opts.Username)
	if err != nil {
		return nil, err
	}
	rules := handle.Engine.Config()

	return &Client{
		server:       gs,
		handle:       handle,
		rules:        rules,
		state:        NewClientState(rules.Slots),
		theme:        draw.NewTheme(w, opts.Profile),
		frame:        draw.NewFrame(w),
		writer:       w,
		inputStream:  input.StartStream(r),
		lastInput:    time.Now(),
		now:          time.Now,
		termSizeFunc: termSizeFunc,
	}, nil
}

// Run starts the client loop. Blocks until the client disconnects or server stops.
func (c *Client) Run() error {
	io.WriteString(c.writer, draw.HideCursor+draw.ClearScreen)
	defer io.WriteString(c.writer, draw.ShowCursor)

	// Unregister from server; this also stops the engine
	defer c.server.UnregisterClient(c.handle.ID)

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		// Process input
		c.processInput()

		// Fold engine notifications into the view
		c.processEngineEvents()

		// Check for server events
		c.processServerEvents()

		// Handle screen resize
		c.updateScreen()

		// Handle game state
		switch c.state.GameState {
		case GameStateStart:
			c.updateStartState()
		case GameStatePlaying:
			c.updatePlayingState()
		case GameStatePaused:
			c.updatePausedState()
		case GameStateOver:
			c.updateOverState()
		case GameStateShutdown:
			c.updateShutdownState()
		}

		// Draw frame
		if err := c.drawFrame(); err != nil {
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	io.WriteString(c.writer, draw.ClearScreen)
	return nil
}

// processInput reads input and tracks inactivity.
func (c *Client) processInput() {
	c.state.Input = input.ReadInput(c.inputStream)

	if c.state.Input.Any() {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.state.Running = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if c.state.Input.Quit {
		c.state.Running = false
	}
}

// processEngineEvents drains the mailbox the engine posts to.
func (c *Client) processEngineEvents() {
	now := c.now()
	for _, ev := range c.handle.Mailbox.Drain() {
		c.state.applyEvent(ev, now, config.HitFlashDuration)
	}
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Server closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventNewRecord:
				c.state.NewRecord = true
			case server.EventServerShutdown:
				c.handle.Engine.Stop()
				c.state.GameState = GameStateShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// updateScreen tracks terminal resizes. On a change the terminal is cleared so
// the recentered board leaves no residue.
func (c *Client) updateScreen() {
	width, height, err := c.termSizeFunc()
	if err != nil {
		return
	}
	if width != c.termWidth || height != c.termHeight {
		c.frame.Clear()
		c.termWidth, c.termHeight = width, height
	}
}

// updateStartState handles the title screen.
func (c *Client) updateStartState() {
	if c.state.Input.Start {
		c.startGame()
	}
}

// updatePlayingState forwards taps and handles pause and reset.
func (c *Client) updatePlayingState() {
	in := c.state.Input
	switch {
	case in.Reset:
		c.resetGame()
		return
	case in.Pause || c.state.isInactive:
		c.handle.Engine.Stop()
		c.state.GameState = GameStatePaused
		return
	}

	now := c.now()
	for _, i := range in.Hits {
		switch c.handle.Engine.Tap(i) {
		case engine.OutcomeHit:
			c.state.flash(i, draw.CellHit, now, config.HitFlashDuration)
		case engine.OutcomeEmpty:
			if c.rules.EmptyTap == engine.TapCountsMiss {
				c.state.flash(i, draw.CellMiss, now, config.HitFlashDuration)
			}
		}
	}
}

// updatePausedState waits for the player to resume.
func (c *Client) updatePausedState() {
	in := c.state.Input
	switch {
	case in.Reset:
		c.resetGame()
	case in.Pause || in.Start:
		c.handle.Engine.Resume()
		c.state.GameState = GameStatePlaying
	}
}

// updateOverState handles the game over screen.
func (c *Client) updateOverState() {
	switch {
	case c.state.Input.Reset:
		c.resetGame()
	case c.state.Input.Start:
		c.startGame()
	}
}

// startGame starts or restarts the game.
func (c *Client) startGame() {
	c.state.resetGame()
	c.state.GameState = GameStatePlaying
	c.handle.Engine.Start()
}

// resetGame abandons the game and returns to the title screen.
func (c *Client) resetGame() {
	c.handle.Engine.Reset()
	c.state.resetGame()
	c.state.GameState = GameStateStart
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
