package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/leonardotrapani/keysim/internal/config"
	"github.com/leonardotrapani/keysim/internal/deps"
	"github.com/leonardotrapani/keysim/internal/layout"
	"github.com/leonardotrapani/keysim/internal/remap"
	"github.com/leonardotrapani/keysim/internal/session"
	"github.com/leonardotrapani/keysim/internal/tui"
	"github.com/leonardotrapani/keysim/internal/xkb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func typeCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "type [text]",
		Short: "Type text in this process, without a daemon",
		Long: `Count down, then type text into the focused window.
With no argument an input form is shown. Pass "-" to read standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := cliLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			cfg, err := loadConfig(log)
			if err != nil {
				return err
			}

			if source == "" {
				source = cfg.Session.DefaultSource
			}
			src, err := remap.ParseSource(source)
			if err != nil {
				return err
			}

			var text string
			if len(args) == 0 {
				text, src, err = tui.PromptRequest(cfg.Session.MaxChars, src)
				if errors.Is(err, tui.ErrAborted) {
					return nil
				}
			} else {
				text, err = readText(args, os.Stdin)
			}
			if err != nil {
				return err
			}

			return runType(cfg, session.Request{Text: text, Source: src}, log)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "layout the text was written for: secondary or target (default from config)")

	return cmd
}

func runType(cfg *config.Config, req session.Request, log *zap.SugaredLogger) error {
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println(tui.CharCounter(req.Text, cfg.Session.MaxChars))
	if _, err := a.ctrl.Start(req); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return followSession(a.ctrl, sigCh)
}

// followSession prints events until the session has finished and its result
// status is shown. An interrupt while the session is busy asks before
// shutting it down.
func followSession(ctrl *session.Controller, interrupts <-chan os.Signal) error {
	var done *session.Event
	result := func() error {
		if done == nil {
			return errors.New("cancelled")
		}
		if !done.OK {
			return errors.New(done.Reason)
		}
		return nil
	}

	events := ctrl.Events()
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return result()
			}
			if line, show := tui.RenderEvent(e); show {
				fmt.Println(line)
			}
			switch {
			case e.Kind == session.EventDone:
				done = &e
			case done != nil && e.Kind == session.EventStatus:
				return result()
			}
		case <-interrupts:
			quit, err := tui.ConfirmQuit(ctrl.Busy())
			if err != nil {
				return err
			}
			if quit {
				ctrl.Shutdown()
			}
		}
	}
}

// readText takes the text from the arguments, or from r when there are none
// or the only argument is "-".
func readText(args []string, r io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the helper tools keysim runs are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := deps.CheckAll(deps.Ydotool, deps.Ydotoold, deps.Pkexec, deps.Gsettings, deps.NotifySend)
			fmt.Print(tui.RenderDeps(results))

			if missing := deps.Missing(results); len(missing) > 0 {
				names := make([]string, len(missing))
				for i, t := range missing {
					names[i] = t.Name
				}
				return fmt.Errorf("missing required tools: %s", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func layoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List the configured input sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := cliLogger()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(log)
			if err != nil {
				return err
			}
			return runLayouts(cmd.Context(), newFacility(cfg), loadRegistry(cfg, log), cfg.Layout.Target)
		},
	}
}

func runLayouts(ctx context.Context, facility layout.Facility, registry *xkb.Registry, target string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	sources, err := facility.Sources(ctx)
	if err != nil {
		return fmt.Errorf("read input sources: %w", err)
	}
	current, err := facility.Current(ctx)
	if err != nil {
		current = -1
	}

	for i, s := range sources {
		marker := "  "
		if i == current {
			marker = tui.StyleHighlight.Render("* ")
		}
		line := marker + s.String()
		if registry != nil {
			if desc := registry.Describe(s.ID); desc != "" {
				line += "  " + tui.StyleMuted.Render(desc)
			}
		}
		if s.Matches(target) {
			line += "  " + tui.StyleSuccess.Render("(target)")
		}
		fmt.Println(line)
	}
	return nil
}

func loadRegistry(cfg *config.Config, log *zap.SugaredLogger) *xkb.Registry {
	if cfg.Layout.Registry == "" {
		return nil
	}
	registry, err := xkb.Load(cfg.Layout.Registry)
	if err != nil {
		log.Debugw("layout descriptions unavailable", "error", err)
		return nil
	}
	return registry
}

func remapCmd() *cobra.Command {
	var showTable bool

	cmd := &cobra.Command{
		Use:   "remap [text]",
		Short: "Show what keystrokes secondary-layout text turns into",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showTable {
				fmt.Print(tui.RenderTable(remap.Hungarian.Entries()))
				return nil
			}
			text, err := readText(args, os.Stdin)
			if err != nil {
				return err
			}
			fmt.Println(remap.Hungarian.Remap(text, remap.Secondary))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTable, "table", false, "print the whole remap table")

	return cmd
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent typing sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := cliLogger()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(log)
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				fmt.Println("History is disabled in the configuration.")
				return nil
			}

			store, err := openHistory(cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			entries, err := store.Recent(ctx, limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			fmt.Print(tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of sessions to show, 0 for all")

	return cmd
}
