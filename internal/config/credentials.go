package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// PasswordSource says where the Neo4j password came from
type PasswordSource string

const (
	PasswordFromConfig   PasswordSource = "config" // config file, GRAPHSCOPE_* or NEO4J_PASSWORD
	PasswordFromKeychain PasswordSource = "keychain"
	PasswordFromPrompt   PasswordSource = "prompt"
	PasswordNotFound     PasswordSource = "none"
)

// CredentialManager resolves the Neo4j password
// Priority: Config/Environment → Keychain → Interactive Prompt
type CredentialManager struct {
	mode    DeploymentMode
	keyring *KeyringManager

	// overridable in tests
	input       io.Reader
	interactive func() bool
}

// NewCredentialManager creates a credential manager for the detected deployment mode
func NewCredentialManager() *CredentialManager {
	return &CredentialManager{
		mode:        DetectMode(),
		keyring:     NewKeyringManager(),
		input:       os.Stdin,
		interactive: isInteractive,
	}
}

// ResolveNeo4jPassword fills cfg.Neo4j.Password when it is empty.
// Prompting happens only when allowPrompt is set, the mode allows it and stdin is a
// terminal. Not finding a password is not an error; validation reports it.
func (cm *CredentialManager) ResolveNeo4jPassword(cfg *Config, allowPrompt bool) (PasswordSource, error) {
	if cfg.Neo4j.Password != "" {
		return PasswordFromConfig, nil
	}

	if password, err := cm.keyring.GetNeo4jPassword(); err == nil && password != "" {
		cfg.Neo4j.Password = password
		return PasswordFromKeychain, nil
	}

	if !allowPrompt || !cm.mode.AllowsInteractivePrompts() || !cm.interactive() {
		return PasswordNotFound, nil
	}

	fmt.Fprintf(os.Stderr, "Neo4j password for %s@%s: ", cfg.Neo4j.User, cfg.Neo4j.URI)
	password, err := cm.readSecurely()
	if err != nil {
		return PasswordNotFound, fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return PasswordNotFound, nil
	}
	cfg.Neo4j.Password = password

	if cm.keyring.IsAvailable() {
		if err := cm.keyring.SaveNeo4jPassword(password); err == nil {
			fmt.Fprintln(os.Stderr, "✓ Saved to keychain")
		}
	}
	return PasswordFromPrompt, nil
}

// ReadPassword reads a secret from the manager's input, without echo on a terminal
func (cm *CredentialManager) ReadPassword() (string, error) {
	return cm.readSecurely()
}

// Keyring returns the keychain backing the manager
func (cm *CredentialManager) Keyring() *KeyringManager {
	return cm.keyring
}

// readSecurely reads a password from stdin without echoing
func (cm *CredentialManager) readSecurely() (string, error) {
	if cm.input == os.Stdin && term.IsTerminal(int(syscall.Stdin)) {
		bytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}

	// Piped input
	line, err := bufio.NewReader(cm.input).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// isInteractive returns true if stdin is a terminal (not piped)
func isInteractive() bool {
	return term.IsTerminal(int(syscall.Stdin))
}
