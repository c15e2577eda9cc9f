package codec

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
)

var (
	mu       sync.RWMutex
	registry = make(map[string]Codec)
)

// Register adds a codec to the global registry, replacing any codec
// previously registered under the same name. Codecs typically register
// themselves from an init function.
func Register(c Codec) {
	mu.Lock()
	defer mu.Unlock()
	registry[c.Name()] = c
}

// Get looks up a codec by name.
func Get(name string) (Codec, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCodecNotFound, name)
	}
	return c, nil
}

// List returns the registered codec names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect returns the registered codec whose magic prefix matches data.
func Detect(data []byte) (Codec, error) {
	mu.RLock()
	defer mu.RUnlock()
	for _, c := range registry {
		magic := c.Magic()
		if len(magic) > 0 && bytes.HasPrefix(data, magic) {
			return c, nil
		}
	}
	return nil, ErrUnknownFormat
}
