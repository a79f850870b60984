// Package env reads process environment variables for code that runs
// before the typed config is loaded.
package env

import (
	"os"
	"strings"
)

// Prefix namespaces our variables so they do not collide with whatever
// else runs in the container.
const Prefix = "CARECOORD_"

// Get returns the value of the prefixed variable, falling back to the
// bare name and then to def. Blank values count as unset.
func Get(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(Prefix + name)); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}
