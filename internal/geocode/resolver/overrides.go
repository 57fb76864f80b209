package resolver

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// OverrideFile is the YAML layout of a user-maintained override table:
//
//	overrides:
//	  - name: "Station Noord"
//	    query: "Station Noord, Buikslotermeerplein, Amsterdam, Netherlands"
type OverrideFile struct {
	Overrides []Override `yaml:"overrides" validate:"dive"`
}

type Override struct {
	Name  string `yaml:"name" validate:"required"`
	Query string `yaml:"query" validate:"required"`
}

// LoadOverrides reads and validates an override file. An empty path yields
// no extra overrides.
func LoadOverrides(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides: %w", err)
	}
	return ParseOverrides(data)
}

func ParseOverrides(data []byte) (map[string]string, error) {
	var file OverrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding overrides: %w", err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid overrides: %w", err)
	}

	out := make(map[string]string, len(file.Overrides))
	for _, o := range file.Overrides {
		if _, dup := out[o.Name]; dup {
			return nil, fmt.Errorf("duplicate override for %q", o.Name)
		}
		out[o.Name] = o.Query
	}
	return out, nil
}
