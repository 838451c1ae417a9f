package vars

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"pyro/logger"
)

const fileExt = ".txt"

var validName = regexp.MustCompile(`^[A-Za-z0-9_\-/]+$`)

// Store persists variable collections as text documents in a library
// directory. One file per variable, named after the bare variable name;
// slashes in names map to subdirectories.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Load scans the library and returns every discovered variable keyed by its
// canonical name. A missing library is not an error, it is an empty library.
// Individual unreadable or misnamed entries are skipped with a warning.
func (s *Store) Load() map[string]Variable {
	variables := make(map[string]Variable)

	if _, err := os.Stat(s.Dir); os.IsNotExist(err) {
		return variables
	}

	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping unreadable library entry", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), fileExt) {
			return nil
		}

		rel, err := filepath.Rel(s.Dir, path)
		if err != nil {
			logger.Warn("Skipping library entry", "path", path, "error", err)
			return nil
		}
		name := filepath.ToSlash(strings.TrimSuffix(rel, fileExt))
		if !validName.MatchString(name) {
			logger.Warn("Skipping variable with invalid name", "name", name)
			return nil
		}

		variable, err := parseVariableFile(name, path)
		if err != nil {
			logger.Warn("Skipping malformed variable file", "path", path, "error", err)
			return nil
		}

		variables[Canonical(name)] = variable
		return nil
	})
	if err != nil {
		logger.Warn("Error scanning variable library", "dir", s.Dir, "error", err)
	}

	return variables
}

// Save persists a variable under its canonical file name, overwriting any
// existing collection. It returns the path the variable was written to.
func (s *Store) Save(name string, description string, values []string) (string, error) {
	if !validName.MatchString(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid variable name: %q", name)
	}

	path := filepath.Join(s.Dir, filepath.FromSlash(name)+fileExt)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create library directory: %w", err)
	}

	var b strings.Builder
	if description != "" {
		b.WriteString("# " + strings.ReplaceAll(description, "\n", " ") + "\n")
	}
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		b.WriteString(value + "\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write variable file: %w", err)
	}

	logger.Debug("Saved variable", "name", name, "values", len(values), "path", path)
	return path, nil
}

func parseVariableFile(name, path string) (Variable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Variable{}, err
	}

	variable := Variable{Name: name}
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Only a leading comment line holds the description; every other
		// non-empty line is a literal value, index order is file order.
		if i == 0 && strings.HasPrefix(line, "#") {
			variable.Description = strings.TrimSpace(strings.TrimPrefix(line, "#"))
			continue
		}
		variable.Values = append(variable.Values, line)
	}

	return variable, nil
}
