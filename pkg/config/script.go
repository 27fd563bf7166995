package config

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Script is the ordered list of conversation steps.
type Script []domain.Step

// stepSpec is the declarative form of a step in a configuration file.
type stepSpec struct {
	Type        string `mapstructure:"type" json:"type" yaml:"type"`
	Text        string `mapstructure:"text" json:"text,omitempty" yaml:"text,omitempty"`
	Field       string `mapstructure:"field" json:"field,omitempty" yaml:"field,omitempty"`
	Placeholder string `mapstructure:"placeholder" json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Validation  string `mapstructure:"validation" json:"validation,omitempty" yaml:"validation,omitempty"`
}

// UnmarshalJSON decodes the script from a list of step objects.
func (s *Script) UnmarshalJSON(data []byte) error {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flow must be a list of steps: %w", err)
	}
	return s.decode(raw)
}

// UnmarshalYAML decodes the script from a list of step mappings.
func (s *Script) UnmarshalYAML(value *yaml.Node) error {
	var raw []map[string]any
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("flow must be a list of steps: %w", err)
	}
	return s.decode(raw)
}

// MarshalJSON encodes the script in its declarative form.
func (s Script) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.specs())
}

// MarshalYAML encodes the script in its declarative form.
func (s Script) MarshalYAML() (any, error) {
	return s.specs(), nil
}

func (s *Script) decode(raw []map[string]any) error {
	out := make(Script, 0, len(raw))
	for i, m := range raw {
		var spec stepSpec
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:      &spec,
			ErrorUnused: true,
		})
		if err != nil {
			return err
		}
		if err := decoder.Decode(m); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}

		step, err := spec.step()
		if err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
		out = append(out, step)
	}
	*s = out
	return nil
}

func (spec stepSpec) step() (domain.Step, error) {
	switch spec.Type {
	case domain.StepTypeBot:
		return domain.BotStep{Text: spec.Text}, nil
	case domain.StepTypeInput:
		return domain.InputStep{
			Field:       domain.Field(spec.Field),
			Placeholder: spec.Placeholder,
			Validation:  domain.Field(spec.Validation),
		}, nil
	case domain.StepTypeRedirect:
		return domain.RedirectStep{}, nil
	case "":
		return nil, fmt.Errorf("step type is required")
	}
	return nil, fmt.Errorf("unknown step type %q", spec.Type)
}

func (s Script) specs() []stepSpec {
	out := make([]stepSpec, 0, len(s))
	for _, step := range s {
		switch st := step.(type) {
		case domain.BotStep:
			out = append(out, stepSpec{Type: domain.StepTypeBot, Text: st.Text})
		case domain.InputStep:
			out = append(out, stepSpec{
				Type:        domain.StepTypeInput,
				Field:       string(st.Field),
				Placeholder: st.Placeholder,
				Validation:  string(st.Validation),
			})
		case domain.RedirectStep:
			out = append(out, stepSpec{Type: domain.StepTypeRedirect})
		}
	}
	return out
}
