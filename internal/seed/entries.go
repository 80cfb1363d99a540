package seed

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

//go:embed services.yaml
var builtinServices []byte

// Entry is a service to seed. Description may be plain text or Draft.js raw
// JSON. An empty ID is replaced by a fresh UUID.
type Entry struct {
	ID          string  `yaml:"id,omitempty"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Cost        float64 `yaml:"cost"`
	Link        string  `yaml:"link"`
	ImgSrc      string  `yaml:"img_src,omitempty"`
}

type file struct {
	Services []Entry `yaml:"services"`
}

// Builtin returns the bundled demonstration services.
func Builtin() ([]Entry, error) {
	return parse(builtinServices)
}

// LoadFiles reads every YAML file matching pattern (doublestar syntax, e.g.
// "data/**/*.yaml") in lexical order.
func LoadFiles(pattern string) ([]Entry, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no seed files match %q", pattern)
	}
	sort.Strings(matches)

	var entries []Entry
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		parsed, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		entries = append(entries, parsed...)
	}
	return entries, nil
}

func parse(data []byte) ([]Entry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, e := range f.Services {
		if e.Title == "" {
			return nil, fmt.Errorf("service %d: title is required", i+1)
		}
	}
	return f.Services, nil
}
