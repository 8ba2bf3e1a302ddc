package env

import "os"

// Get reads an environment variable, treating an empty value the same as an
// unset one. Used for the few knobs read before config loading, such as the
// logger's output format.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
