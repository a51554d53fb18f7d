package tui

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/leonardotrapani/keysim/internal/config"
	"github.com/leonardotrapani/keysim/internal/xkb"
	"github.com/muesli/termenv"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// ConfigSection represents a configuration section
type ConfigSection string

const (
	SectionSession       ConfigSection = "session"
	SectionLayout        ConfigSection = "layout"
	SectionInjection     ConfigSection = "injection"
	SectionNotifications ConfigSection = "notifications"
	SectionHistory       ConfigSection = "history"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Run starts the configuration menu on a copy of cfg. registry may be nil.
func Run(cfg *config.Config, registry *xkb.Registry) (*ConfigureResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	edited := *cfg

	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection(&edited)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		switch section {
		case SectionSaveExit:
			if err := edited.Validate(); err != nil {
				fmt.Println(StyleError.Render("Cannot save: " + err.Error()))
				waitForEnter()
				continue
			}
			confirmed, err := showSummary(&edited, registry)
			if err != nil {
				return &ConfigureResult{Cancelled: true}, nil
			}
			if confirmed {
				return &ConfigureResult{Config: &edited}, nil
			}

		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil

		case SectionSession:
			_ = editSession(&edited)
		case SectionLayout:
			_ = editLayout(&edited, registry)
		case SectionInjection:
			_ = editInjection(&edited)
		case SectionNotifications:
			_ = editNotifications(&edited)
		case SectionHistory:
			_ = editHistory(&edited)
		}
	}
}

func selectSection(cfg *config.Config) (ConfigSection, error) {
	options := []huh.Option[ConfigSection]{
		huh.NewOption(formatSessionLabel(cfg), SectionSession),
		huh.NewOption(formatLayoutLabel(cfg), SectionLayout),
		huh.NewOption(formatInjectionLabel(cfg), SectionInjection),
		huh.NewOption(formatNotificationsLabel(cfg), SectionNotifications),
		huh.NewOption(formatHistoryLabel(cfg), SectionHistory),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}

	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}

	return selected, nil
}

func editSession(cfg *config.Config) error {
	countdown := strconv.Itoa(cfg.Session.Countdown)
	maxChars := strconv.Itoa(cfg.Session.MaxChars)
	ready := cfg.Session.ReadyDelay.String()
	source := cfg.Session.DefaultSource

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Countdown (seconds)").
				Description("Time to focus the target window before typing starts").
				Validate(validateIntRange(0, 60)).
				Value(&countdown),
			huh.NewInput().
				Title("Maximum characters").
				Validate(validateIntRange(1, config.MaxTextChars)).
				Value(&maxChars),
			huh.NewInput().
				Title("Result display time").
				Description(`How long "Simulation completed!" stays before "Ready", e.g. 3s`).
				Validate(validateDuration(false)).
				Value(&ready),
			huh.NewSelect[string]().
				Title("Default source layout").
				Options(
					huh.NewOption("Secondary (remap)", "secondary"),
					huh.NewOption("Target (type as is)", "target"),
				).
				Value(&source),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Session.Countdown, _ = strconv.Atoi(countdown)
	cfg.Session.MaxChars, _ = strconv.Atoi(maxChars)
	cfg.Session.ReadyDelay, _ = time.ParseDuration(ready)
	cfg.Session.DefaultSource = source
	return nil
}

func editLayout(cfg *config.Config, registry *xkb.Registry) error {
	backend := cfg.Layout.Backend
	target := cfg.Layout.Target
	secondary := cfg.Layout.Secondary
	settle := cfg.Layout.SettleDelay.String()
	restore := cfg.Layout.RestoreDelay.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Layout backend").
				Options(
					huh.NewOption("GNOME input sources (gsettings)", "gsettings"),
					huh.NewOption("None (never switch layouts)", "none"),
				).
				Value(&backend),
			huh.NewInput().
				Title("Target layout").
				Description("XKB layout the injector types in").
				Validate(validateLayout(registry, "us")).
				Value(&target),
			huh.NewInput().
				Title("Secondary layout").
				Description("Layout the remapped text was written on").
				Validate(validateLayout(registry, "hu")).
				Value(&secondary),
			huh.NewInput().
				Title("Settle delay").
				Description("Pause after switching to the target layout").
				Validate(validateDuration(false)).
				Value(&settle),
			huh.NewInput().
				Title("Restore delay").
				Validate(validateDuration(false)).
				Value(&restore),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Layout.Backend = backend
	cfg.Layout.Target = target
	cfg.Layout.Secondary = secondary
	cfg.Layout.SettleDelay, _ = time.ParseDuration(settle)
	cfg.Layout.RestoreDelay, _ = time.ParseDuration(restore)
	return nil
}

func editInjection(cfg *config.Config) error {
	elevate := cfg.Injection.Elevate
	keyDelay := cfg.Injection.KeyDelay.String()
	startDelay := cfg.Injection.StartDelay.String()
	timeout := cfg.Injection.Timeout.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Run ydotool through pkexec?").
				Description("Needed when your user cannot write to /dev/uinput").
				Value(&elevate),
			huh.NewInput().
				Title("Delay between keystrokes").
				Validate(validateDuration(false)).
				Value(&keyDelay),
			huh.NewInput().
				Title("Delay before the first keystroke").
				Validate(validateDuration(false)).
				Value(&startDelay),
			huh.NewInput().
				Title("Typing timeout").
				Validate(validateDuration(true)).
				Value(&timeout),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Injection.Elevate = elevate
	cfg.Injection.KeyDelay, _ = time.ParseDuration(keyDelay)
	cfg.Injection.StartDelay, _ = time.ParseDuration(startDelay)
	cfg.Injection.Timeout, _ = time.ParseDuration(timeout)
	return nil
}

// editNotifications handles the notifications section edit
func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	notifType := cfg.Notifications.Type
	if notifType == "" {
		notifType = "desktop"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Notify when a simulation finishes?").
				Value(&enabled),
			huh.NewSelect[string]().
				Title("Notification Type").
				Description("How should notifications be displayed?").
				Options(
					huh.NewOption("Desktop notifications (notify-send)", "desktop"),
					huh.NewOption("Log to console only", "log"),
					huh.NewOption("None (silent)", "none"),
				).
				Value(&notifType),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = enabled
	cfg.Notifications.Type = notifType
	return nil
}

func editHistory(cfg *config.Config) error {
	enabled := cfg.History.Enabled
	path := cfg.History.Path

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Record finished sessions?").
				Description("Only time, layout, length and outcome are stored, never the text").
				Value(&enabled),
			huh.NewInput().
				Title("Database path").
				Description("Leave empty for $XDG_DATA_HOME/keysim/history.db").
				Value(&path),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.History.Enabled = enabled
	cfg.History.Path = path
	return nil
}

func showSummary(cfg *config.Config, registry *xkb.Registry) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))
	fmt.Println()

	fmt.Printf("  %s %ds countdown, up to %d characters, %s text by default\n",
		StyleLabel.Render("Session:"), cfg.Session.Countdown, cfg.Session.MaxChars, cfg.Session.DefaultSource)
	fmt.Printf("  %s %s -> %s via %s\n",
		StyleLabel.Render("Layouts:"), describeLayout(registry, cfg.Layout.Secondary), describeLayout(registry, cfg.Layout.Target), cfg.Layout.Backend)
	elevation := "direct"
	if cfg.Injection.Elevate {
		elevation = "via " + cfg.Injection.ElevateCommand
	}
	fmt.Printf("  %s %s %s, %s per key, %s timeout\n",
		StyleLabel.Render("Injection:"), cfg.Injection.Command, elevation, cfg.Injection.KeyDelay, cfg.Injection.Timeout)
	fmt.Printf("  %s %s\n", StyleLabel.Render("Notifications:"), formatEnabled(cfg.Notifications.Enabled, cfg.Notifications.Type))
	fmt.Printf("  %s %s\n", StyleLabel.Render("History:"), formatEnabled(cfg.History.Enabled, ""))
	fmt.Println()

	confirmed := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Back").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

func waitForEnter() {
	fmt.Print(StyleSubtle.Render("Press enter to continue"))
	_, _ = fmt.Scanln()
}

// clearScreen clears the terminal screen
func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorPrimary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorText)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(ColorSubtle)

	return t
}
