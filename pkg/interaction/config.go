// Package interaction loads and validates interaction configurations.
//
// A config usually arrives embedded in a model reply. Parse extracts the
// first JSON block, validates it against ConfigSchema, decodes it leniently
// and checks the cross-field rules. Any failure rejects the config wholesale
// with a *ConfigError.
package interaction

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Parse extracts a config from free text and loads it.
func Parse(text string) (*domain.InteractionConfig, error) {
	payload, ok := Extract(text)
	if !ok {
		return nil, &ConfigError{Stage: StageExtract, Issues: []Issue{{Reason: "no JSON block found"}}}
	}
	return Load([]byte(payload))
}

// Load decodes a JSON config document and validates it.
func Load(raw []byte) (*domain.InteractionConfig, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ConfigError{Stage: StageDecode, Err: err}
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}
	cfg, err := decode(doc)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(doc any) (*domain.InteractionConfig, error) {
	cfg := &domain.InteractionConfig{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, &ConfigError{Stage: StageDecode, Err: err}
	}
	if err := dec.Decode(doc); err != nil {
		return nil, &ConfigError{Stage: StageDecode, Err: err}
	}
	if cfg.Elements == nil {
		cfg.Elements = []domain.Element{}
	}
	return cfg, nil
}

// Validate checks the rules that tie elements to screens.
func Validate(cfg *domain.InteractionConfig) error {
	if cfg == nil {
		return &ConfigError{Stage: StageValidate, Issues: []Issue{{Reason: "config is nil"}}}
	}
	var issues []Issue
	if !cfg.HasScreen(cfg.InitialScreen) {
		issues = append(issues, Issue{
			Key:    "initialScreen",
			Reason: fmt.Sprintf("%q is not a declared screen", cfg.InitialScreen),
		})
	}
	for i, el := range cfg.Elements {
		if el.Type == domain.ElementScreen && !cfg.HasScreen(el.Name) {
			issues = append(issues, Issue{
				Key:    fmt.Sprintf("elements[%d].name", i),
				Reason: fmt.Sprintf("screen %q is not declared in screens", el.Name),
			})
		}
	}
	if len(issues) > 0 {
		return &ConfigError{Stage: StageValidate, Issues: issues}
	}
	return nil
}
