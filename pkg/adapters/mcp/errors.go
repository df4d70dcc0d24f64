package mcp

import (
	"fmt"
	"strings"

	"github.com/aretw0/psdrun/pkg/interaction"
)

// describeConfigError spells out every issue of a rejected config so the
// agent can correct them in one round.
func describeConfigError(err error) error {
	issues := interaction.Issues(err)
	if len(issues) == 0 {
		return err
	}
	lines := make([]string, len(issues))
	for i, is := range issues {
		lines[i] = "- " + is.String()
	}
	return fmt.Errorf("%w\n%s", err, strings.Join(lines, "\n"))
}
