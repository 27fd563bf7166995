package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/go-playground/validator/v10"
)

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

var structValidator = validator.New()

// Validate checks field constraints and the consistency of the step script.
func (c *Config) Validate() error {
	if c == nil {
		return domain.ErrConfigMissing
	}

	var problems []string

	if err := structValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("failed to validate config: %w", err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
	}

	problems = append(problems, c.checkScript()...)

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func (c *Config) checkScript() []string {
	flow := c.Messages.Flow
	if len(flow) == 0 {
		return []string{"messages.flow: script is empty"}
	}

	var problems []string
	redirects := 0
	seen := map[domain.Field]bool{}
	for i, step := range flow {
		switch st := step.(type) {
		case domain.BotStep:
			if strings.TrimSpace(st.Text) == "" {
				problems = append(problems, fmt.Sprintf("messages.flow[%d]: bot step without text", i))
			}
		case domain.InputStep:
			if !st.Field.IsIdentity() {
				problems = append(problems, fmt.Sprintf("messages.flow[%d]: unknown field %q", i, st.Field))
			}
			if !st.Kind().IsIdentity() {
				problems = append(problems, fmt.Sprintf("messages.flow[%d]: unknown validation %q", i, st.Kind()))
			}
			seen[st.Field] = true
		case domain.RedirectStep:
			redirects++
			if i != len(flow)-1 {
				problems = append(problems, fmt.Sprintf("messages.flow[%d]: redirect must be the last step", i))
			}
		}
	}

	if redirects == 0 {
		problems = append(problems, "messages.flow: a redirect step is required")
	}
	for _, f := range domain.IdentityFields {
		if !seen[f] {
			problems = append(problems, fmt.Sprintf("messages.flow: no input step for %q", f))
		}
	}
	return problems
}

func describe(fe validator.FieldError) string {
	// Namespace is "Config.Channel.Number"; drop the root type.
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s: failed %s=%s", path, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: failed %s", path, fe.Tag())
}
