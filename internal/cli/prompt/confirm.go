// Package prompt asks the user questions on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user interrupts a prompt with Ctrl+C.
var ErrAborted = errors.New("aborted")

// Confirm asks a yes/no question. An empty answer selects the default.
func Confirm(label string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}

	p := promptui.Prompt{
		Label:     fmt.Sprintf("%s [%s]", label, hint),
		IsConfirm: true,
	}

	answer, err := p.Run()
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		return false, ErrAborted
	case errors.Is(err, promptui.ErrAbort):
		// promptui reports "n" as ErrAbort; an empty answer too
		if answer == "" {
			return defaultYes, nil
		}
		return false, nil
	case err != nil:
		return false, err
	}
	return parseAnswer(answer, defaultYes), nil
}

// ConfirmWithForce skips the prompt when force is set.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}

func parseAnswer(s string, defaultYes bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return defaultYes
	case "y", "yes":
		return true
	}
	return false
}
