package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/leonardotrapani/keysim/internal/bus"
	"github.com/leonardotrapani/keysim/internal/config"
	"github.com/leonardotrapani/keysim/internal/daemon"
	"github.com/leonardotrapani/keysim/internal/session"
	"github.com/leonardotrapani/keysim/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var debug bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "keysim",
	Short:        "Type text into any window without keyboard layout mix-ups",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		serveCmd(),
		typeCmd(),
		sendCmd(),
		statusCmd(),
		versionCmd(),
		stopCmd(),
		checkCmd(),
		layoutsCmd(),
		remapCmd(),
		historyCmd(),
		configureCmd(),
	)
}

func newLogger(debug bool, outputs ...string) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{"stdout"}
	if len(outputs) > 0 {
		loggerConfig.OutputPaths = outputs
	}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}

// cliLogger keeps one-shot commands quiet unless --debug is set, so their
// own output stays readable.
func cliLogger() (*zap.SugaredLogger, error) {
	log, err := newLogger(debug, "stderr")
	if err != nil {
		return nil, err
	}
	if debug {
		return log, nil
	}
	return log.Desugar().WithOptions(zap.IncreaseLevel(zapcore.WarnLevel)).Sugar(), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(debug)
			if err != nil {
				return err
			}
			defer log.Sync()

			return runServe(cmd.Context(), log)
		},
	}
}

func runServe(ctx context.Context, log *zap.SugaredLogger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// creates the file with defaults on first run
	if _, err := config.Load(log); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	manager, err := config.NewManager(path, log)
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	cfg := manager.GetConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	manager.OnReload(a.reload)
	if err := manager.StartWatching(ctx); err != nil {
		log.Warnw("config hot reload disabled", "error", err)
	}
	defer manager.Stop()

	log.Infow("keysim daemon starting", "version", version, "config", path)
	return daemon.New(a.ctrl, a.source, log.Named("daemon")).Run()
}

func sendCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "send [text]",
		Short: "Ask the running daemon to type text",
		Long: `Ask the running daemon to type text after its countdown.
Pass "-" or no argument to read the text from standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(args, os.Stdin)
			if err != nil {
				return err
			}
			resp, err := bus.SendLine(bus.StartLine(source, text))
			if err != nil {
				return fmt.Errorf("failed to reach daemon: %w", err)
			}
			return printResponse(resp)
		},
	}

	cmd.Flags().StringVar(&source, "source", "-", `layout the text was written for: secondary, target or "-" for the daemon default`)

	return cmd
}

func statusCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Get the daemon's session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdStatus)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			if raw {
				fmt.Println(resp)
				return nil
			}
			state, remaining, err := parseStatus(resp)
			if err != nil {
				return err
			}
			fmt.Println(tui.RenderState(state, remaining))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the protocol response unchanged")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and daemon protocol versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("keysim %s (protocol %s)\n", version, bus.ProtoVer)
			resp, err := bus.SendCommand(bus.CmdVersion)
			if err != nil {
				fmt.Println("daemon: not running")
				return nil
			}
			_, fields := bus.ParseResponse(resp)
			fmt.Printf("daemon: protocol %s\n", fields["proto"])
			return nil
		},
	}
}

func stopCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				resp, err := bus.SendCommand(bus.CmdStatus)
				if err != nil {
					return fmt.Errorf("failed to stop daemon: %w", err)
				}
				state, _, err := parseStatus(resp)
				if err != nil {
					return err
				}
				busy := session.State{Status: session.Status(state)}.Busy()
				ok, err := tui.ConfirmQuit(busy)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("Daemon left running.")
					return nil
				}
			}

			resp, err := bus.SendCommand(bus.CmdQuit)
			if err != nil {
				return fmt.Errorf("failed to stop daemon: %w", err)
			}
			return printResponse(resp)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "stop without asking, even mid-session")

	return cmd
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration menu for keysim.
This lets you adjust:
- Countdown and text limits
- Keyboard layouts and the layout backend
- Keystroke injection through ydotool
- Notifications and session history`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := cliLogger()
			if err != nil {
				return err
			}
			return runConfigure(log)
		},
	}
}

func runConfigure(log *zap.SugaredLogger) error {
	// Load existing config or create default
	cfg, err := config.Load(log)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg, loadRegistry(cfg, log))
	if err != nil {
		return fmt.Errorf("configuration menu error: %w", err)
	}

	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	if err := config.Save(path, result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Println()

	showNextSteps(path)
	return nil
}

func showNextSteps(configPath string) {
	serviceRunning := false
	if err := exec.Command("systemctl", "--user", "is-active", "--quiet", "keysim.service").Run(); err == nil {
		serviceRunning = true
	}

	fmt.Println("Next Steps:")
	fmt.Println("1. Check the helper tools: keysim check")
	if serviceRunning {
		fmt.Println("2. Nothing to restart, the daemon reloads its config automatically")
	} else {
		fmt.Println("2. Start the daemon: systemctl --user start keysim.service")
	}
	fmt.Println(`3. Try it: keysim send "hello"`)
	fmt.Println()
	fmt.Printf("Config file location: %s\n", configPath)
}

// parseStatus reads a "STATUS state=... remaining=..." response.
func parseStatus(resp string) (string, int, error) {
	kind, fields := bus.ParseResponse(resp)
	if kind != "STATUS" || fields["state"] == "" {
		return "", 0, fmt.Errorf("unexpected daemon response: %q", resp)
	}
	remaining, _ := strconv.Atoi(fields["remaining"])
	return fields["state"], remaining, nil
}

// printResponse prints an OK response and turns ERR into an error.
func printResponse(resp string) error {
	if reason, ok := strings.CutPrefix(resp, "ERR "); ok {
		return errors.New(reason)
	}
	fmt.Println(resp)
	return nil
}
