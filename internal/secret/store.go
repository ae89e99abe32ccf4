package secret

import (
	"os"
	"regexp"
)

// Store provides a pluggable source for sensitive configuration values such
// as database passwords. The initial implementation reads the process
// environment, but can be swapped for a keychain or vault.
type Store interface {
	// Get retrieves the secret value for the given key.
	// The second return value is false if the key does not exist.
	Get(key string) (string, bool)
}

// EnvStore resolves secrets from environment variables.
type EnvStore struct{}

func (EnvStore) Get(key string) (string, bool) {
	return os.LookupEnv(key)
}

var refPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expand replaces ${VAR} references in s with values from the store.
// Unresolvable references are left as-is so a later connection failure
// names the literal reference instead of an empty string.
func Expand(s string, store Store) string {
	if store == nil {
		return s
	}
	return refPattern.ReplaceAllStringFunc(s, func(ref string) string {
		key := refPattern.FindStringSubmatch(ref)[1]
		if v, ok := store.Get(key); ok {
			return v
		}
		return ref
	})
}
