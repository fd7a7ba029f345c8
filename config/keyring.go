package config

import (
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const KeyringService = "voicescribe"

// PromptFunc asks the user for a secret.
type PromptFunc func(label string) (string, error)

// ResolveAPIKey returns the direct-mode key: the configured value if set,
// else the one stored in the OS keyring, else prompt's answer, which is
// then stored for next time.
func ResolveAPIKey(configured string, prompt PromptFunc) (string, error) {
	if configured != "" {
		return configured, nil
	}

	username := systemUser()
	apiKey, err := keyring.Get(KeyringService, username)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return "", errors.Wrap(err, "read api key from keyring")
	}
	if apiKey != "" {
		return apiKey, nil
	}

	if prompt == nil {
		return "", errors.New("GROQ_API_KEY not found")
	}
	apiKey, err = prompt("GROQ_API_KEY not found, enter one: ")
	if err != nil {
		return "", errors.Wrap(err, "read api key")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", errors.New("a Groq API key is required in direct mode")
	}
	if err := keyring.Set(KeyringService, username, apiKey); err != nil {
		return "", errors.Wrap(err, "save api key to keyring")
	}
	return apiKey, nil
}

// TerminalPrompt reads a secret from stdin without echoing it.
func TerminalPrompt(label string) (string, error) {
	fmt.Print(label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func systemUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "default"
}
