package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/whackamole/internal/draw"
	"github.com/tomz197/whackamole/internal/input"
	"github.com/tomz197/whackamole/internal/loop/config"
)

// ASCII art title (figlet "small" font)
var titleArt = []string{
	` __      ___  _   _   ___ _  __    _     __  __  ___  _    ___ `,
	` \ \    / / || | /_\ / __| |/ /   /_\   |  \/  |/ _ \| |  | __|`,
	`  \ \/\/ /| __ |/ _ \ (__| ' <   / _ \  | |\/| | (_) | |__| _| `,
	`   \_/\_/ |_||_/_/ \_\___|_|\_\ /_/ \_\ |_|  |_|\___/|____|___|`,
}

var gameOverArt = []string{
	`   ___   _   __  __ ___    _____   _____ ___  `,
	`  / __| /_\ |  \/  | __|  / _ \ \ / / __| _ \ `,
	` | (_ |/ _ \| |\/| | _|  | (_) \ V /| _||   / `,
	`  \___/_/ \_\_|  |_|___|  \___/ \_/ |___|_|_\ `,
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On game state or inactivity transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	stateChanged := c.state.GameState != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.frame.Clear()
		c.state.prevGameState = c.state.GameState
		c.state.wasInactive = c.state.isInactive
	}

	block := c.view(c.now())

	// A block that changed size would leave residue around the new one
	width, height := draw.BlockWidth(block), draw.BlockHeight(block)
	if !stateChanged && (width != c.lastWidth || height != c.lastHeight) {
		c.frame.Clear()
	}
	c.lastWidth, c.lastHeight = width, height

	c.frame.Center(c.termWidth, c.termHeight, block)
	return c.frame.Flush()
}

// view renders the whole screen for the current state as one block.
func (c *Client) view(now time.Time) string {
	if c.state.GameState == GameStateShutdown {
		return c.shutdownView()
	}
	if c.state.isInactive && c.state.GameState != GameStatePlaying {
		return c.inactivityView()
	}

	switch c.state.GameState {
	case GameStatePlaying:
		return c.playingView(now, "")
	case GameStatePaused:
		return c.playingView(now, ">>  PAUSED - P or SPACE to resume, R to reset  <<")
	case GameStateOver:
		return c.gameOverView(now)
	default:
		return c.startView(now)
	}
}

// hud renders score, misses and the all-time best.
// Fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) hud() string {
	th := c.theme
	level := c.handle.Engine.Config().Curve.Level(c.state.Score)
	best := c.server.Best()

	return strings.Join([]string{
		th.Stat("Score:", fmt.Sprintf("%-6d", c.state.Score)),
		th.Stat("Level:", fmt.Sprintf("%-3d", level+1)),
		th.Label.Render("Lives: ") + th.Lives(c.state.Misses, c.rules.MaxMisses),
		th.Stat("Best:", fmt.Sprintf("%-6d", best.Score)),
	}, "   ")
}

// playingView draws the HUD above the board. status replaces the key hint.
func (c *Client) playingView(now time.Time, status string) string {
	th := c.theme
	board := th.Board(c.state.cells(now), draw.BoardColumns(c.rules.Slots), input.SlotKey)

	footer := th.Dim.Render(fmt.Sprintf("Keys %s whack   P pause   R reset   Q quit", keyRange(c.rules.Slots)))
	if status != "" {
		footer = th.Title.Render(status)
	}

	return lipgloss.JoinVertical(lipgloss.Center, c.hud(), "", board, "", footer)
}

// startView draws the title screen.
func (c *Client) startView(now time.Time) string {
	th := c.theme
	lines := []string{
		th.Title.Render(strings.Join(titleArt, "\n")),
		"",
		th.Dim.Render("~ Whack-a-Mole over SSH ~"),
		"",
		th.Value.Render("Controls"),
		fmt.Sprintf("%-8s . . . . Whack a hole", keyRange(c.rules.Slots)),
		"P / ESC  . . . . . . Pause",
		"R  . . . . . . . . . Reset",
		"Q  . . . . . . . . .  Quit",
		"",
		th.Stat("All-time best:", c.bestLine()),
		"",
		blink(now, ">>  Press SPACE to Start  <<"),
	}
	if board := c.leaderboardView(); board != "" {
		lines = append(lines, "", board)
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// gameOverView draws the final score and the restart prompt.
func (c *Client) gameOverView(now time.Time) string {
	th := c.theme
	lines := []string{
		th.Alert.Render(strings.Join(gameOverArt, "\n")),
		"",
		th.Stat("Final score:", fmt.Sprintf("%d", c.state.FinalScore)),
	}
	if c.state.NewRecord {
		lines = append(lines, "", th.Title.Render("*** NEW ALL-TIME RECORD ***"))
	} else {
		lines = append(lines, "", th.Stat("All-time best:", c.bestLine()))
	}
	lines = append(lines, "", blink(now, ">>  Press SPACE to Restart, R for title  <<"))
	if board := c.leaderboardView(); board != "" {
		lines = append(lines, "", board)
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// inactivityView draws the inactivity warning screen.
func (c *Client) inactivityView() string {
	th := c.theme
	remaining := int(config.InactivityDisconnectUser - time.Since(c.lastInput).Seconds())
	return lipgloss.JoinVertical(lipgloss.Center,
		th.Alert.Render("INACTIVITY WARNING"),
		"",
		fmt.Sprintf("You have been inactive for too long. You will be disconnected in %3d seconds.", max(remaining, 0)),
		"",
		th.Dim.Render("Press any key to continue"),
	)
}

// shutdownView draws the server shutdown notification screen.
func (c *Client) shutdownView() string {
	th := c.theme
	remaining := int(c.state.shutdownTimer) + 1
	return lipgloss.JoinVertical(lipgloss.Center,
		th.Alert.Render("SERVER SHUTTING DOWN"),
		"",
		"The server is restarting for maintenance.",
		"Please reconnect in a moment.",
		"",
		fmt.Sprintf("Disconnecting in %2d seconds...", remaining),
		"",
		th.Dim.Render("Press Q to disconnect now"),
	)
}

// leaderboardView lists this run's best games, or nothing before the first one.
func (c *Client) leaderboardView() string {
	entries := c.server.Leaderboard()
	if len(entries) == 0 {
		return ""
	}
	th := c.theme
	lines := []string{th.Value.Render("Top scores")}
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%d. %-*s %6d", i+1, config.MaxUsernameLength, e.Username, e.Score))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (c *Client) bestLine() string {
	best := c.server.Best()
	if best.Score == 0 {
		return "none yet"
	}
	return fmt.Sprintf("%d by %s", best.Score, best.Player)
}

// keyRange describes the slot keys in use, e.g. "1-9".
func keyRange(slots int) string {
	if slots <= 1 {
		return string(input.SlotKey(0))
	}
	return fmt.Sprintf("%c-%c", input.SlotKey(0), input.SlotKey(slots-1))
}

// blink shows s every other 600ms, keeping its width when hidden.
func blink(now time.Time, s string) string {
	if now.UnixMilli()/600%2 == 0 {
		return s
	}
	return strings.Repeat(" ", len(s))
}
