package term

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
)

// TriggerLogin starts the native login flow for a provider CLI. This is a
// fire-and-forget side operation outside the transport's correlation core:
// it launches the provider's own tooling (in a terminal window where the
// flow is interactive) and returns a message for the user.
func TriggerLogin(log *slog.Logger, provider string) (string, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	log = log.With("component", "term_login")
	log.Info("triggering provider login", "provider", provider)

	switch provider {
	case "codex":
		return codexLogin()
	case "claude":
		return claudeLogin()
	case "gemini":
		return geminiLogin()
	default:
		return "", fmt.Errorf("unknown provider: %s", provider)
	}
}

// codexLogin runs `codex login`, which opens the browser itself.
func codexLogin() (string, error) {
	name := "codex"
	if runtime.GOOS == "windows" {
		name = "codex.cmd"
	}

	cmd := exec.Command(name, "login")
	hideWindow(cmd)

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to start codex login: %w", err)
	}

	return "Login initiated. Please complete in browser.", nil
}

// claudeLogin opens a new terminal window running `claude setup-token`,
// since the flow is interactive.
func claudeLogin() (string, error) {
	const doneMsg = "Opening terminal window for Claude authentication. " +
		"Please follow the instructions in the terminal."

	switch runtime.GOOS {
	case "windows":
		cmd := exec.Command("cmd", "/C", "start", "cmd", "/K", "claude.cmd setup-token")
		if err := cmd.Start(); err != nil {
			return "", fmt.Errorf("failed to open terminal for claude auth: %w", err)
		}

		return doneMsg, nil

	case "darwin":
		cmd := exec.Command("osascript", "-e",
			`tell application "Terminal" to do script "claude setup-token"`)
		if err := cmd.Start(); err != nil {
			return "", fmt.Errorf("failed to open terminal for claude auth: %w", err)
		}

		return doneMsg, nil

	default:
		// Try common Linux terminal emulators in order.
		terminals := [][]string{
			{"gnome-terminal", "--", "claude", "setup-token"},
			{"konsole", "-e", "claude", "setup-token"},
			{"xterm", "-e", "claude", "setup-token"},
		}

		for _, argv := range terminals {
			if err := exec.Command(argv[0], argv[1:]...).Start(); err == nil {
				return doneMsg, nil
			}
		}

		return "", fmt.Errorf(
			"failed to open terminal, run 'claude setup-token' manually")
	}
}

// geminiLogin issues a throwaway query so the gemini CLI opens its OAuth
// browser flow.
func geminiLogin() (string, error) {
	const doneMsg = "Login initiated. Gemini CLI will open browser for authentication."

	if runtime.GOOS == "windows" {
		// Run in a minimized console of its own so the flow stays
		// interactive without blocking the application.
		cmd := exec.Command("cmd", "/C", "start", "/MIN", "", "gemini.cmd", "hello")
		if err := cmd.Start(); err != nil {
			return "", fmt.Errorf("failed to start gemini login: %w", err)
		}

		return doneMsg, nil
	}

	if err := exec.Command("gemini", "hello").Run(); err != nil {
		return "", fmt.Errorf("failed to start gemini login: %w", err)
	}

	return doneMsg, nil
}
