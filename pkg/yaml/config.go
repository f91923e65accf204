package yaml

import (
	"github.com/shapestone/yamlref/pkg/semantic"
)

// LoadConfig reads an analyzer configuration file. Keys that are not set keep
// their defaults; unknown keys are errors.
//
// Example:
//
//	cfg, err := yaml.LoadConfig("resolve.yaml")
//	if err != nil {
//	    return err
//	}
//	res, err := yaml.LoadResolved(text, yaml.WithConfig(cfg))
func LoadConfig(path string) (semantic.Config, error) {
	return semantic.LoadConfig(path)
}
