package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the user for credentials interactively.
type Prompter interface {
	// IsTerminal reports whether the session is attached to a terminal.
	// Prompting is only allowed when it is.
	IsTerminal() bool
	// Username prompts for a username, offering a default.
	Username(defaultUser string) (string, error)
	// Password prompts for a password without echoing it.
	Password() (string, error)
}

// TerminalPrompter prompts on stdin/stderr.
type TerminalPrompter struct{}

func (TerminalPrompter) IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (TerminalPrompter) Username(defaultUser string) (string, error) {
	if defaultUser != "" {
		fmt.Fprintf(os.Stderr, "Username [%s]: ", defaultUser)
	} else {
		fmt.Fprint(os.Stderr, "Username: ")
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	username := strings.TrimSpace(line)
	if username == "" {
		username = defaultUser
	}
	return username, nil
}

func (TerminalPrompter) Password() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(password), nil
}
