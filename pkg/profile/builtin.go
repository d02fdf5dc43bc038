package profile

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed profiles/*.yaml
var profileFS embed.FS

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]*Profile)
)

// Builtin loads an embedded reference profile by name (e.g.
// "power-meter").
func Builtin(name string) (*Profile, error) {
	cacheMu.RLock()
	if p, ok := cache[name]; ok {
		cacheMu.RUnlock()
		return p, nil
	}
	cacheMu.RUnlock()

	data, err := profileFS.ReadFile("profiles/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("builtin profile %q not found: %w", name, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("builtin profile %q: %w", name, err)
	}

	cacheMu.Lock()
	cache[name] = p
	cacheMu.Unlock()

	return p, nil
}

// BuiltinNames returns the names of all embedded reference profiles.
func BuiltinNames() ([]string, error) {
	entries, err := profileFS.ReadDir("profiles")
	if err != nil {
		return nil, fmt.Errorf("reading profiles directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") {
			names = append(names, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}
