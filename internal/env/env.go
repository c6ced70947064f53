// Package env loads a .env file into the process environment and reads
// typed values back out of it.
package env

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadResult reports what a dotenv load did. Err and a nonzero Applied can
// coexist: variables set before a parse error stay set.
type LoadResult struct {
	Path    string
	Loaded  bool
	Applied int
	Err     error
}

// LoadDotenv finds a .env file and applies it to the process environment.
// SHEETWRIGHT_ENV_PATH overrides the search; otherwise the nearest .env on
// the walk from the working directory to the filesystem root wins.
// Variables already present in the environment are never overwritten.
func LoadDotenv() LoadResult {
	if override := strings.TrimSpace(os.Getenv("SHEETWRIGHT_ENV_PATH")); override != "" {
		return loadPath(override)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return LoadResult{Err: err}
	}
	path := nearestDotenv(cwd)
	if path == "" {
		return LoadResult{}
	}
	return loadPath(path)
}

func loadPath(path string) LoadResult {
	res := LoadResult{Path: path}
	file, err := os.Open(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer file.Close()
	res.Loaded = true

	vars, err := Parse(file)
	if err != nil {
		res.Err = err
		return res
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, vars[key]); err != nil {
			res.Err = err
			return res
		}
		res.Applied++
	}
	return res
}

// Parse reads KEY=VALUE lines into a map. Blank lines and # comments are
// skipped, a leading "export " is tolerated, and matching single or double
// quotes around the value are stripped.
func Parse(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		vars[key] = unquote(strings.TrimSpace(value))
	}
	return vars, scanner.Err()
}

func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '"' || first == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

func nearestDotenv(start string) string {
	for dir := start; ; {
		candidate := filepath.Join(dir, ".env")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Bool reports whether the named environment variable is set to a truthy
// value. Unset and unrecognized values are false.
func Bool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}
