package config

import (
	"encoding/json"
	"fmt"

	taskerrors "github.com/taskhub/taskhub/internal/errors"
	"github.com/taskhub/taskhub/internal/schema"
)

// Validate checks a configuration against the embedded JSON schema. The
// config is round-tripped through JSON so TOML and YAML documents are
// validated by the same schema as native JSON ones.
func Validate(cfg *Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config for validation: %w", err)
	}

	if err := schema.ValidateConfig(data); err != nil {
		return taskerrors.Configf("%v", err)
	}

	return nil
}
