package config

import (
	"fmt"
	"slices"
	"strings"
)

// MaxDepthLimit is the largest max_depth accepted. Deeper limits would let
// the parser run into the goroutine stack limit before reporting an error.
const MaxDepthLimit = 100000

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Session == "" {
		return fmt.Errorf("session is required")
	}
	if strings.ContainsAny(c.Session, " \t\n") {
		return fmt.Errorf("session %q must not contain whitespace", c.Session)
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (expected one of: %s)",
			c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.MaxDepth > MaxDepthLimit {
		return fmt.Errorf("max_depth must be at most %d, got %d", MaxDepthLimit, c.MaxDepth)
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive, got %s", c.Watch.Debounce)
	}
	return nil
}
