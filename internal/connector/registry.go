package connector

import "fmt"

// Constructor creates a Connector for one submission source.
type Constructor func() Connector

// registry maps provider names ("kobo", "static") to constructors.
// Providers self-register from init, so importing a provider package is
// what makes it selectable in config.
var registry = map[string]Constructor{}

// Register adds a submission-source constructor under the provider name
// used in config and on the CLI.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the constructor for a provider name. Unknown names are a
// config error surfaced before any fetch happens.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown connector provider: %s", name)
	}
	return ctor, nil
}

// Providers returns the registered provider names, unordered.
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
