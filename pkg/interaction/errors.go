package interaction

import (
	"fmt"
	"strings"

	"github.com/aretw0/psdrun/pkg/domain"
)

// Stage names the step of config loading that rejected the input.
type Stage string

const (
	StageExtract  Stage = "extract"
	StageDecode   Stage = "decode"
	StageSchema   Stage = "schema"
	StageValidate Stage = "validate"
)

// Issue is a single problem found in a config.
type Issue struct {
	Key    string // JSON pointer or field path
	Reason string
}

func (i Issue) String() string {
	if i.Key == "" {
		return i.Reason
	}
	return fmt.Sprintf("%s: %s", i.Key, i.Reason)
}

// ConfigError rejects a config wholesale. It matches domain.ErrInvalidConfig
// with errors.Is and also unwraps to the underlying cause, if any.
type ConfigError struct {
	Stage  Stage
	Issues []Issue
	Err    error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", domain.ErrInvalidConfig, e.Stage)
	switch {
	case len(e.Issues) == 1:
		fmt.Fprintf(&b, ": %s", e.Issues[0])
	case len(e.Issues) > 1:
		fmt.Fprintf(&b, ": %d issues:", len(e.Issues))
		for i, is := range e.Issues {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, is)
		}
	case e.Err != nil:
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrInvalidConfig}
	}
	return []error{domain.ErrInvalidConfig, e.Err}
}

// Issues returns the issues carried by err if it is a ConfigError.
// Otherwise returns nil.
func Issues(err error) []Issue {
	if ce, ok := err.(*ConfigError); ok {
		return ce.Issues
	}
	return nil
}
