// Package config provides a string-keyed configuration bag with
// fallback-key lookup, used to seed storage roots and other settings
// from either environment variables or a loaded settings table.
package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Bag is a string-keyed configuration source with fallback lookup.
// Keys are resolved case-sensitively against an in-memory map that is
// seeded from the process environment; LoadEnv additionally pulls in
// a .env file when present.
type Bag struct {
	values map[string]string
}

// New creates an empty Bag.
func New() *Bag {
	return &Bag{values: make(map[string]string)}
}

// LoadEnv loads a .env file (if present) and the current process
// environment into a new Bag. Missing .env files are not an error.
func LoadEnv() *Bag {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using process environment")
	}

	bag := New()
	for _, kv := range os.Environ() {
		if idx := strings.IndexByte(kv, '='); idx >= 0 {
			bag.values[kv[:idx]] = kv[idx+1:]
		}
	}
	return bag
}

// Set stores a value directly, mostly useful in tests.
func (b *Bag) Set(key, value string) {
	b.values[key] = value
}

// Get returns the value for key and whether it was present.
func (b *Bag) Get(key string) (string, bool) {
	v, ok := b.values[key]
	return v, ok
}

// GetWithFallback tries each key in order and returns the first
// non-empty value, falling back to fallback when none are set to a
// non-empty value. This
// mirrors the legacy two-name settings such as
// "thumbnail.base.path" / "thumbnail.basepath".
func (b *Bag) GetWithFallback(keys []string, fallback string) string {
	for _, key := range keys {
		if v, ok := b.Get(key); ok && v != "" {
			return v
		}
	}
	return fallback
}
