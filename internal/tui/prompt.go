package tui

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/keysim/internal/remap"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = huh.ErrUserAborted

// ConfirmQuit asks before quitting while a session is running. It returns
// true straight away when nothing is running.
func ConfirmQuit(busy bool) (bool, error) {
	if !busy {
		return true, nil
	}

	quit := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("A simulation is in progress. Quit anyway?").
				Description("Typing stops and the original keyboard layout is restored.").
				Affirmative("Quit").
				Negative("Keep running").
				Value(&quit),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return quit, nil
}

// PromptRequest asks for the text to type and the layout it was written on.
func PromptRequest(maxChars int, source remap.Source) (string, remap.Source, error) {
	var text string
	if source == "" {
		source = remap.Secondary
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Text to type").
				Description(fmt.Sprintf("Up to %d characters. Focus the target window during the countdown.", maxChars)).
				CharLimit(maxChars).
				Validate(func(s string) error { return ValidateText(s, maxChars) }).
				Value(&text),
			huh.NewSelect[remap.Source]().
				Title("Text was written for").
				Options(
					huh.NewOption("Hungarian layout (remap to US keys)", remap.Secondary),
					huh.NewOption("US layout (type as is)", remap.Target),
				).
				Value(&source),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", "", err
	}
	return text, source, nil
}

// ValidateText mirrors the controller's start checks so the form can reject
// input before submitting it.
func ValidateText(s string, maxChars int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	if n == 0 {
		return errors.New("please enter some text")
	}
	if n > maxChars {
		return fmt.Errorf("text is %d characters, limit is %d", n, maxChars)
	}
	return nil
}
