package server

import (
	"errors"
	"io"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/tomz197/whackamole/internal/clock"
	"github.com/tomz197/whackamole/internal/engine"
	"github.com/tomz197/whackamole/internal/highscore"
	"github.com/tomz197/whackamole/internal/loop/config"
)

// ErrShuttingDown is returned by RegisterClient once Shutdown has begun.
var ErrShuttingDown = errors.New("server is shutting down")

// GameServer is the interface clients use to communicate with the game server.
// Decouples the Client from the concrete Server implementation, enabling
// testing and potential network-based server implementations.
type GameServer interface {
	RegisterClient(username string) (*ClientHandle, error)
	UnregisterClient(clientID int)
	Leaderboard() []TopScoreEntry
	Best() highscore.Record
}

// Server hosts one isolated game engine per connected client and keeps the
// shared leaderboard and all-time record.
type Server struct {
	mu           sync.RWMutex
	clients      map[int]*ClientHandle
	nextClientID int
	scores       map[int]TopScoreEntry // Best game per client for this server run
	shuttingDown bool

	cfg     engine.Config
	tracker *highscore.Tracker
	clock   clock.Clock
	newRand func() engine.Rand
	log     *log.Logger
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       int
	Username string           // Display name for this client
	Engine   *engine.Engine   // This client's private game
	Mailbox  *engine.Mailbox  // Engine notifications for the client's frame loop
	EventsCh chan ClientEvent // Server events (record, shutdown)
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type  ClientEventType
	Score int // For record events
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventNewRecord ClientEventType = iota
	EventServerShutdown
)

// Options configures a Server. Zero values use real time, a seeded PCG per
// engine and a discarding logger.
type Options struct {
	Clock   clock.Clock
	NewRand func() engine.Rand
	Logger  *log.Logger
}

// NewServer creates a game server. cfg must be valid; it is checked again for
// every engine created.
func NewServer(cfg engine.Config, tracker *highscore.Tracker, opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Server{
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		scores:       make(map[int]TopScoreEntry),
		cfg:          cfg,
		tracker:      tracker,
		clock:        opts.Clock,
		newRand:      opts.NewRand,
		log:          opts.Logger,
	}
}

// RegisterClient registers a new client with the given username and returns its handle.
func (s *Server) RegisterClient(username string) (*ClientHandle, error) {
	username = truncateName(username, config.MaxUsernameLength)

	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		return nil, ErrShuttingDown
	}
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	mailbox := engine.NewMailbox()
	opts := []engine.Option{
		engine.WithClock(s.clock),
		engine.WithLogger(s.log.With("client", id, "user", username)),
		engine.WithObserver(engine.Multi(
			mailbox,
			engine.ObserverFuncs{
				OnGameOver: func(finalScore int) { s.recordScore(id, username, finalScore) },
			},
		)),
	}
	if s.newRand != nil {
		opts = append(opts, engine.WithRand(s.newRand()))
	}

	eng, err := engine.New(s.cfg, opts...)
	if err != nil {
		return nil, err
	}

	handle := &ClientHandle{
		ID:       id,
		Username: username,
		Engine:   eng,
		Mailbox:  mailbox,
		EventsCh: make(chan ClientEvent, 16),
	}

	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		eng.Close()
		return nil, ErrShuttingDown
	}
	s.clients[id] = handle
	n := len(s.clients)
	s.mu.Unlock()

	s.log.Info("client registered", "client", id, "user", username, "clients", n)
	return handle, nil
}

// UnregisterClient removes a client from the server and stops its game.
func (s *Server) UnregisterClient(clientID int) {
	s.mu.Lock()
	handle, ok := s.clients[clientID]
	if ok {
		close(handle.EventsCh)
		delete(s.clients, clientID)
	}
	n := len(s.clients)
	s.mu.Unlock()

	if !ok {
		return
	}
	handle.Engine.Close()
	s.log.Info("client unregistered", "client", clientID, "user", handle.Username, "clients", n)
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Best returns the all-time record.
func (s *Server) Best() highscore.Record {
	if s.tracker == nil {
		return highscore.Record{}
	}
	return s.tracker.Best()
}

// recordScore runs on game over, outside the engine lock.
func (s *Server) recordScore(clientID int, username string, score int) {
	s.mu.Lock()
	if prev, ok := s.scores[clientID]; !ok || score > prev.Score {
		s.scores[clientID] = TopScoreEntry{Username: username, Score: score, clientID: clientID}
	}
	s.mu.Unlock()

	if s.tracker == nil {
		return
	}
	isRecord, err := s.tracker.Submit(username, score)
	if err != nil {
		s.log.Error("persisting record", "client", clientID, "err", err)
	}
	if !isRecord {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if handle, ok := s.clients[clientID]; ok {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventNewRecord, Score: score}:
		default:
		}
	}
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout). Games still
// running at the deadline are closed.
func (s *Server) Shutdown(timeout time.Duration) {
	// Notify all connected clients about the shutdown
	s.mu.Lock()
	s.shuttingDown = true
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.Unlock()

	// Wait for all clients to disconnect, or timeout
	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if s.Clients() == 0 {
			return
		}
		select {
		case <-deadline:
			s.closeRemaining()
			return
		case <-ticker.C:
		}
	}
}

// closeRemaining stops the engines of clients that did not leave in time.
func (s *Server) closeRemaining() {
	s.mu.RLock()
	handles := make([]*ClientHandle, 0, len(s.clients))
	for _, handle := range s.clients {
		handles = append(handles, handle)
	}
	s.mu.RUnlock()

	for _, handle := range handles {
		handle.Engine.Close()
	}
	if len(handles) > 0 {
		s.log.Warn("shutdown deadline reached", "clients", len(handles))
	}
}

// truncateName keeps at most n runes of name so a multi-byte character is never split.
func truncateName(name string, n int) string {
	if utf8.RuneCountInString(name) <= n {
		return name
	}
	return string([]rune(name)[:n])
}
