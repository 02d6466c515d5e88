// Command vtcapture spawns a command under a PTY-backed session and
// records its output as an asciinema-format cast while mirroring it
// live to the attached terminal. Grounded on the teacher-adjacent
// fwd command (noppefoxwolf-vibetunnel/server/cmd/vibetunnel-fwd) for
// its raw-mode/stdin-forwarding shape, retargeted at pkg/session.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rivo/uniseg"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/vtcore/vterm/internal/config"
	"github.com/vtcore/vterm/pkg/session"
)

var (
	sessionName string
	controlDir  string
	extraEnv    []string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vtcapture [flags] -- <command> [args...]",
	Short: "Spawn a command under a recorded PTY session",
	Long: `vtcapture spawns a command under a PTY, mirrors its output to this
terminal, and records the full session as an asciinema-format cast in
a session directory under the control directory.

Examples:
  vtcapture -- bash -l
  vtcapture --name demo -- python3 -i`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCapture,
}

func init() {
	cfg := config.Load()
	// Accept both "control-dir" and "control_dir" on the command line,
	// matching the config file's snake_case key.
	rootCmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	rootCmd.Flags().StringVar(&sessionName, "name", "", "session name (default: derived from the command)")
	rootCmd.Flags().StringVar(&controlDir, "control-dir", cfg.ControlDir, "directory session recordings are written under")
	rootCmd.Flags().StringArrayVar(&extraEnv, "env", nil, "additional KEY=VALUE environment variables for the spawned command")
}

func runCapture(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	if err := os.MkdirAll(controlDir, 0o755); err != nil {
		return fmt.Errorf("failed to create control directory: %w", err)
	}

	name := sessionName
	if name == "" {
		name = strings.Join(args, " ")
	}

	cols, rows := terminalSize()

	manager := session.NewManager(controlDir)
	sess, err := manager.CreateSession(session.Config{
		Cmd:  args,
		Cwd:  cwd,
		Env:  extraEnv,
		Name: name,
		Cols: cols,
		Rows: rows,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	fmt.Fprintf(os.Stderr, "vtcapture: session %s recording to %s\n", sess.ID, sess.StreamOutPath())

	return attach(manager, sess)
}

func terminalSize() (int, int) {
	cfg := config.Load()
	cols, rows := cfg.DefaultCols, cfg.DefaultRows
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil {
			cols, rows = w, h
		}
	}
	return cols, rows
}

// attach puts the local terminal into raw mode, forwards stdin to the
// session one write per read (each read is walked by grapheme cluster
// and written whole, so a multi-rune emoji or accented character that
// arrives in one read reaches the PTY as one write; a cluster split
// across two reads is written in two parts), and mirrors raw
// PTY output straight back to stdout via the session's direct output
// callback.
func attach(manager *session.Manager, sess *session.Session) error {
	var oldState *term.State
	stdinFd := int(os.Stdin.Fd())
	if term.IsTerminal(stdinFd) {
		var err error
		oldState, err = term.MakeRaw(stdinFd)
		if err != nil {
			return fmt.Errorf("failed to set raw mode: %w", err)
		}
		defer term.Restore(stdinFd, oldState)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			if cols, rows := terminalSize(); cols > 0 && rows > 0 {
				_ = sess.Resize(cols, rows)
			}
		}
	}()

	done := make(chan error, 1)

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				// Re-join grapheme clusters before forwarding so a
				// multi-rune keystroke (combining accent, emoji ZWJ
				// sequence) reaches the PTY as a single write.
				clusters := uniseg.NewGraphemes(string(buf[:n]))
				var pending strings.Builder
				for clusters.Next() {
					pending.WriteString(clusters.Str())
				}
				if _, werr := sess.Write([]byte(pending.String())); werr != nil {
					done <- werr
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					done <- err
				} else {
					done <- nil
				}
				return
			}
		}
	}()

	manager.RegisterDirectOutputCallback(sess.ID, func(sid string, data []byte) {
		os.Stdout.Write(data)
	})
	defer manager.UnregisterDirectOutputCallback(sess.ID, nil)

	err := <-done
	log.Printf("vtcapture: session %s ended: %v", sess.ID, err)
	return err
}
