package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/domain"
)

// ValidateConfig loads the configuration at path and prints its step script.
// Validation problems are returned as a *config.ValidationError.
func ValidateConfig(path string, out io.Writer) (*config.Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Script (%d steps):\n", len(cfg.Messages.Flow))
	for i, step := range cfg.Messages.Flow {
		fmt.Fprintf(out, "  %2d. %s\n", i, describeStep(step))
	}
	fmt.Fprintf(out, "Sinks: %s\n", enabledSinks(cfg))
	return cfg, nil
}

func describeStep(step domain.Step) string {
	switch s := step.(type) {
	case domain.BotStep:
		return fmt.Sprintf("bot      %q", truncate(s.Text, 60))
	case domain.InputStep:
		if s.Kind() != s.Field {
			return fmt.Sprintf("input    %s (validated as %s)", s.Field, s.Kind())
		}
		return fmt.Sprintf("input    %s", s.Field)
	case domain.RedirectStep:
		return "redirect"
	default:
		return step.Type()
	}
}

func enabledSinks(cfg *config.Config) string {
	in := cfg.Integrations
	var names []string
	if in.Webhook.Enabled {
		names = append(names, "webhook")
	}
	if in.GoogleSheets.Enabled {
		names = append(names, "google_sheets")
	}
	if in.Backup.Enabled {
		names = append(names, "local_backup")
	}
	if in.Email.Enabled {
		names = append(names, "email")
	}
	if len(names) == 0 {
		return "none"
	}
	return fmt.Sprint(names)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
