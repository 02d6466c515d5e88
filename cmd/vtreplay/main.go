// Command vtreplay plays back an asciinema-format cast recorded by
// vtcapture (or any compatible session's stream-out.jsonl), either
// writing the raw bytes to stdout with realistic timing or rendering
// the terminal state into a vt.Screen and printing snapshots as it goes.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vtcore/vterm/internal/config"
	"github.com/vtcore/vterm/internal/vt"
)

var (
	renderMode bool
	speed      float64
	noDelay    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vtreplay <cast-file>",
	Short: "Replay an asciinema-format terminal recording",
	Long: `vtreplay reads a cast file (asciinema cast v2: a JSON header
line followed by [timestamp, "o"|"r", data] event lines) and either
streams its raw output to stdout with the recording's original timing,
or renders it through the terminal emulator and prints each resulting
screen.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	cfg := config.Load()
	rootCmd.Flags().BoolVar(&renderMode, "render", false, "render through the terminal emulator instead of dumping raw bytes")
	rootCmd.Flags().Float64Var(&speed, "speed", cfg.ReplaySpeed, "playback speed multiplier (1.0 = real-time)")
	rootCmd.Flags().BoolVar(&noDelay, "no-delay", false, "ignore recorded timing and replay as fast as possible")
}

type castHeader struct {
	Version int      `json:"version"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Command []string `json:"command"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open cast file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		return fmt.Errorf("empty cast file")
	}
	var header castHeader
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil {
		return fmt.Errorf("failed to parse cast header: %w", err)
	}
	if header.Width == 0 {
		header.Width = 80
	}
	if header.Height == 0 {
		header.Height = 24
	}

	var screen *vt.Screen
	var parser *vt.Parser
	if renderMode {
		screen = vt.NewScreen(header.Width, header.Height)
		parser = vt.NewParser(screen)
	}

	last := 0.0
	for scanner.Scan() {
		var event []json.RawMessage
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil || len(event) < 3 {
			continue
		}

		var ts float64
		var kind, data string
		if err := json.Unmarshal(event[0], &ts); err != nil {
			continue
		}
		if err := json.Unmarshal(event[1], &kind); err != nil {
			continue
		}
		if err := json.Unmarshal(event[2], &data); err != nil {
			continue
		}

		if !noDelay && speed > 0 {
			wait := (ts - last) / speed
			if wait > 0 {
				time.Sleep(time.Duration(wait * float64(time.Second)))
			}
		}
		last = ts

		switch kind {
		case "o":
			if renderMode {
				parser.Feed([]byte(data))
				printFrame(screen)
			} else {
				fmt.Print(data)
			}
		case "r":
			var w, h int
			if _, err := fmt.Sscanf(data, "%dx%d", &w, &h); err == nil && renderMode {
				screen.Resize(w, h)
				printFrame(screen)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading cast file: %w", err)
	}
	return nil
}

func printFrame(screen *vt.Screen) {
	fmt.Println(strings.Repeat("-", screen.Columns()))
	for _, line := range screen.Display() {
		fmt.Println(line)
	}
	fmt.Println(strings.Repeat("-", screen.Columns()))
	cur := screen.Cursor()
	fmt.Printf("cursor: row=%d col=%d\n", cur.Y, cur.X)
}
