// Command vtserve runs the HTTP/WebSocket front end over pkg/api,
// serving session lifecycle routes and live screen streaming to
// browser clients. Grounded on noppefoxwolf-vibetunnel's
// cmd/vibetunnel-server/main.go for its flag/startup/graceful-shutdown
// shape, swapped from gin to the gorilla/mux router pkg/api builds.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vtcore/vterm/internal/config"
	"github.com/vtcore/vterm/pkg/api"
	"github.com/vtcore/vterm/pkg/session"
	"github.com/vtcore/vterm/pkg/termsocket"
)

var (
	addr            string
	controlDir      string
	cleanupInterval time.Duration
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vtserve",
	Short: "Serve sessions over HTTP and WebSocket",
	Long: `vtserve exposes the session manager over a REST API and two
WebSocket endpoints: raw PTY bytes (/ws/raw) and rendered screen
snapshots (/ws/screen), for a browser-based terminal client.`,
	RunE: runServe,
}

func init() {
	cfg := config.DefaultConfig()
	rootCmd.Flags().StringVar(&addr, "addr", ":4023", "address to listen on")
	rootCmd.Flags().StringVar(&controlDir, "control-dir", cfg.ControlDir, "directory session recordings are read from and watched")
	rootCmd.Flags().DurationVar(&cleanupInterval, "cleanup-interval", 30*time.Second, "how often to reap exited sessions")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(controlDir, 0o755); err != nil {
		return fmt.Errorf("failed to create control directory: %w", err)
	}

	sessions := session.NewManager(controlDir)
	screens := termsocket.NewManager(sessions)
	server := api.NewServer(sessions, screens)

	watcher := session.NewControlDirWatcher(sessions)
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start control directory watcher: %w", err)
	}

	cleanupTicker := time.NewTicker(cleanupInterval)
	go func() {
		for range cleanupTicker.C {
			if err := sessions.RemoveExitedSessions(); err != nil {
				log.Printf("[WARN] vtserve: cleanup: %v", err)
			}
		}
	}()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("vtserve: listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("vtserve: listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("vtserve: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cleanupTicker.Stop()
	watcher.Stop()
	screens.Shutdown()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("vtserve: forced shutdown: %v", err)
	}
	log.Println("vtserve: exited")
	return nil
}
