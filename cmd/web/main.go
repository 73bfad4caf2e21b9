package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tomz197/whackamole/internal/config"
	"github.com/tomz197/whackamole/internal/highscore"
	loopconfig "github.com/tomz197/whackamole/internal/loop/config"
)

const (
	defaultHost          = "0.0.0.0"
	defaultPort          = "8080"
	defaultHighScoreFile = "/app/data/highscore"
)

//go:embed index.html
var htmlPage string

func main() {
	logger := loopconfig.NewLogger(os.Stderr, "web")
	if err := config.LoadDotEnv(); err != nil {
		logger.Fatal("config error", "err", err)
	}

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	sshPort := config.GetEnv("SSH_DISPLAY_PORT", "2222")
	store := highscore.NewFileStore(config.GetEnv("HIGHSCORE_FILE", defaultHighScoreFile))

	addr := fmt.Sprintf("%s:%s", host, port)
	logger.Info("Starting web server", "addr", "http://"+addr)
	if err := http.ListenAndServe(addr, newMux(store, sshHost, sshPort, logger)); err != nil {
		logger.Fatal("server error", "err", err)
	}
}

// newMux serves the landing page and the current record. The record file is
// read per request since the SSH server owns and rewrites it.
func newMux(store highscore.Store, sshHost, sshPort string, logger *log.Logger) *http.ServeMux {
	page := strings.NewReplacer("{{.SSHHost}}", sshHost, "{{.SSHPort}}", sshPort)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		best := "none yet"
		if rec, err := store.Load(); err != nil {
			logger.Warn("reading high score", "err", err)
		} else if rec.Score > 0 {
			best = fmt.Sprintf("%d by %s", rec.Score, rec.Player)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, strings.Replace(page.Replace(htmlPage), "{{.Best}}", best, 1))
	})
	mux.HandleFunc("GET /api/highscore", func(w http.ResponseWriter, r *http.Request) {
		rec, err := store.Load()
		if err != nil {
			logger.Warn("reading high score", "err", err)
			http.Error(w, "high score unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Score  int    `json:"score"`
			Player string `json:"player"`
		}{rec.Score, rec.Player})
	})
	return mux
}
