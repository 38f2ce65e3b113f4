// Package reference holds the fixed value sets (provinces, skills, genders)
// that ads and profiles are validated against. A Catalog is built once at
// startup and never mutated afterwards, so it is safe for concurrent reads.
package reference

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/provinces.txt data/catalog.yaml
var defaults embed.FS

// Lookup is the read-only view services depend on.
type Lookup interface {
	IsProvince(name string) bool
	IsSkill(name string) bool
	IsGender(name string) bool
	Provinces() []string
	Skills() []string
	Genders() []string
}

type catalogFile struct {
	Skills  []string `yaml:"skills"`
	Genders []string `yaml:"genders"`
}

type Catalog struct {
	provinces []string
	skills    []string
	genders   []string

	provinceSet map[string]struct{}
	skillSet    map[string]struct{}
	genderSet   map[string]struct{}
}

// New builds a catalog from explicit lists, keeping their order and dropping duplicates.
func New(provinces, skills, genders []string) *Catalog {
	c := &Catalog{}
	c.provinces, c.provinceSet = index(provinces)
	c.skills, c.skillSet = index(skills)
	c.genders, c.genderSet = index(genders)
	return c
}

// Load reads the provinces text file and the skills/genders YAML file.
// An empty path falls back to the data embedded in the binary.
func Load(provincesPath, catalogPath string) (*Catalog, error) {
	provincesRaw, err := readSource(provincesPath, "data/provinces.txt")
	if err != nil {
		return nil, fmt.Errorf("read provinces: %w", err)
	}
	provinces, err := parseLines(provincesRaw)
	if err != nil {
		return nil, fmt.Errorf("parse provinces: %w", err)
	}
	if len(provinces) == 0 {
		return nil, fmt.Errorf("provinces list is empty")
	}

	catalogRaw, err := readSource(catalogPath, "data/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var cf catalogFile
	if err := yaml.Unmarshal(catalogRaw, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(cf.Skills) == 0 || len(cf.Genders) == 0 {
		return nil, fmt.Errorf("catalog must define skills and genders")
	}

	return New(provinces, cf.Skills, cf.Genders), nil
}

func readSource(path, embedded string) ([]byte, error) {
	if path == "" {
		return defaults.ReadFile(embedded)
	}
	return os.ReadFile(path)
}

// parseLines returns trimmed non-empty lines, skipping '#' comments.
func parseLines(raw []byte) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

func index(values []string) ([]string, map[string]struct{}) {
	list := make([]string, 0, len(values))
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := set[v]; dup {
			continue
		}
		set[v] = struct{}{}
		list = append(list, v)
	}
	return list, set
}

func (c *Catalog) IsProvince(name string) bool {
	_, ok := c.provinceSet[name]
	return ok
}

func (c *Catalog) IsSkill(name string) bool {
	_, ok := c.skillSet[name]
	return ok
}

func (c *Catalog) IsGender(name string) bool {
	_, ok := c.genderSet[name]
	return ok
}

// Provinces returns a copy; callers may not mutate the catalog.
func (c *Catalog) Provinces() []string {
	return append([]string(nil), c.provinces...)
}

func (c *Catalog) Skills() []string {
	return append([]string(nil), c.skills...)
}

func (c *Catalog) Genders() []string {
	return append([]string(nil), c.genders...)
}
