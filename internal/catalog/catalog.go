package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "embed"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"github.com/sahilm/fuzzy"
)

//go:embed roles.json
var builtinRoles []byte

var (
	// ErrInvalidCatalog is returned when the catalog source is missing or malformed.
	ErrInvalidCatalog = errors.New("invalid question catalog")
	// ErrRoleNotFound is matched by every RoleNotFoundError.
	ErrRoleNotFound = errors.New("role not found")
)

// RoleNotFoundError reports a role that has no catalog entry.
type RoleNotFoundError struct {
	Role        string
	Known       []string
	Suggestions []string
}

func (e *RoleNotFoundError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("role %q not found in catalog (did you mean %q?)", e.Role, e.Suggestions[0])
	}
	return fmt.Sprintf("role %q not found in catalog (known roles: %s)", e.Role, strings.Join(e.Known, ", "))
}

func (e *RoleNotFoundError) Is(target error) bool {
	return target == ErrRoleNotFound
}

// Catalog maps role names to ordered question lists. It is read-only after load.
type Catalog struct {
	roles map[string][]Question
}

type document struct {
	Roles map[string]struct {
		Questions []struct {
			Question string `mapstructure:"question"`
			Type     string `mapstructure:"type"`
		} `mapstructure:"questions"`
	} `mapstructure:"roles"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return parse(builtinRoles, ".json")
}

// Load reads a catalog from a .json or .toml file. An empty path loads the
// built-in catalog.
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q: %w", ErrInvalidCatalog, path, err)
	}

	return parse(data, strings.ToLower(filepath.Ext(path)))
}

func parse(data []byte, ext string) (*Catalog, error) {
	raw := make(map[string]any)

	switch ext {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: parse toml: %w", ErrInvalidCatalog, err)
		}
	case ".json", "":
		if err := json.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: parse json: %w", ErrInvalidCatalog, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported catalog format %q", ErrInvalidCatalog, ext)
	}

	var doc document
	if err := mapstructure.Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode roles: %w", ErrInvalidCatalog, err)
	}

	if len(doc.Roles) == 0 {
		return nil, fmt.Errorf("%w: no roles defined", ErrInvalidCatalog)
	}

	c := &Catalog{roles: make(map[string][]Question, len(doc.Roles))}
	for name, role := range doc.Roles {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: role with empty name", ErrInvalidCatalog)
		}
		if _, dup := c.roles[name]; dup {
			return nil, fmt.Errorf("%w: role %q is defined more than once", ErrInvalidCatalog, name)
		}

		questions := make([]Question, 0, len(role.Questions))
		for _, q := range role.Questions {
			if strings.TrimSpace(q.Question) == "" {
				continue
			}
			questions = append(questions, NewQuestion(q.Question, Category(q.Type)))
		}

		if len(questions) == 0 {
			return nil, fmt.Errorf("%w: role %q has no questions", ErrInvalidCatalog, name)
		}

		c.roles[name] = questions
	}

	return c, nil
}

// Roles returns the role names sorted alphabetically.
func (c *Catalog) Roles() []string {
	names := make([]string, 0, len(c.roles))
	for name := range c.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Questions returns a copy of the role's questions.
func (c *Catalog) Questions(role string) ([]Question, error) {
	questions, ok := c.roles[role]
	if !ok {
		return nil, &RoleNotFoundError{Role: role, Known: c.Roles(), Suggestions: c.Suggest(role)}
	}

	out := make([]Question, len(questions))
	copy(out, questions)
	return out, nil
}

// Len returns the number of roles.
func (c *Catalog) Len() int {
	return len(c.roles)
}

type roleSource []string

func (s roleSource) String(i int) string {
	return strings.ToLower(s[i])
}

func (s roleSource) Len() int {
	return len(s)
}

// Suggest returns the role names that fuzzily match query, best first.
func (c *Catalog) Suggest(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	roles := roleSource(c.Roles())
	matches := fuzzy.FindFrom(query, roles)

	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, roles[match.Index])
	}
	return out
}
