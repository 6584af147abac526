// Package scenariofile loads declarative scenario documents from YAML,
// the authoring format consumed by the termwright CLI.
package scenariofile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"go.alt-gnome.ru/termwright"
	"go.alt-gnome.ru/termwright/fixture"
)

// Document is one parsed scenario file.
type Document struct {
	Name     string        `yaml:"name"`
	Session  string        `yaml:"session"`
	Command  []string      `yaml:"command"`
	Defaults Defaults      `yaml:"defaults"`
	Fixtures []FixtureSpec `yaml:"fixtures"`
	Steps    []StepSpec    `yaml:"steps"`
}

type Defaults struct {
	Timeout  Duration `yaml:"timeout"`
	Interval Duration `yaml:"interval"`
}

type FixtureSpec struct {
	Path     string `yaml:"path"`
	Dir      bool   `yaml:"dir"`
	Content  string `yaml:"content"`
	Template string `yaml:"template"`
	Create   bool   `yaml:"create"`
	Expect   string `yaml:"expect"` // "", "exists" or "absent"
	Remove   bool   `yaml:"remove"`
}

type StepSpec struct {
	Send     string   `yaml:"send"` // literal text, no trailing Enter
	Line     string   `yaml:"line"` // literal text followed by Enter
	Press    string   `yaml:"press"`
	Expect   string   `yaml:"expect"`
	Timeout  Duration `yaml:"timeout"`
	Interval Duration `yaml:"interval"`
}

// Duration wraps time.Duration with YAML string parsing ("250ms").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

var keyNames = map[string]termwright.Key{
	"Enter":  termwright.KeyEnter,
	"Tab":    termwright.KeyTab,
	"Escape": termwright.KeyEscape,
	"Up":     termwright.KeyUp,
	"Down":   termwright.KeyDown,
	"C-c":    termwright.KeyCtrlC,
	"C-d":    termwright.KeyCtrlD,
}

// Load reads and validates one scenario document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Parse validates a scenario document from YAML bytes.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) validate() error {
	if d.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", d.Name)
	}
	for i, s := range d.Steps {
		if s.Send == "" && s.Line == "" && s.Press == "" {
			return fmt.Errorf("step %d sends nothing", i+1)
		}
		if s.Press != "" {
			if _, ok := keyNames[s.Press]; !ok {
				return fmt.Errorf("step %d: unknown key %q", i+1, s.Press)
			}
		}
	}
	for i, f := range d.Fixtures {
		switch f.Expect {
		case "", "exists", "absent":
		default:
			return fmt.Errorf("fixture %d: unknown expectation %q", i+1, f.Expect)
		}
	}
	return nil
}

// Scenario builds the runnable scenario from the document.
func (d *Document) Scenario() *termwright.Scenario {
	b := termwright.NewScenario(d.Name)
	if d.Session != "" {
		b.WithSession(d.Session)
	}
	if d.Defaults.Timeout > 0 {
		b.WithTimeout(time.Duration(d.Defaults.Timeout))
	}
	if d.Defaults.Interval > 0 {
		b.WithPollInterval(time.Duration(d.Defaults.Interval))
	}

	sb := b.Do()
	for i, s := range d.Steps {
		if i > 0 {
			sb = sb.Then()
		}
		if s.Send != "" {
			sb.Type(s.Send)
		}
		if s.Line != "" {
			sb.Line(s.Line)
		}
		if s.Press != "" {
			sb.Press(keyNames[s.Press])
		}
		if s.Expect != "" {
			sb.Expect(s.Expect)
		}
		if s.Timeout > 0 {
			sb.Within(time.Duration(s.Timeout))
		}
		if s.Interval > 0 {
			sb.Every(time.Duration(s.Interval))
		}
	}
	return sb.Done().Build()
}

// FixtureList builds the fixture set, expanding "~/" path prefixes to
// the user's home directory.
func (d *Document) FixtureList() ([]fixture.Fixture, error) {
	out := make([]fixture.Fixture, 0, len(d.Fixtures))
	for _, f := range d.Fixtures {
		path, err := ExpandPath(f.Path)
		if err != nil {
			return nil, err
		}
		fx := fixture.Fixture{
			Path:     path,
			Dir:      f.Dir,
			Content:  []byte(f.Content),
			Template: f.Template,
			Create:   f.Create,
			Remove:   f.Remove,
		}
		switch f.Expect {
		case "exists":
			fx.Expect = fixture.ExpectExists
		case "absent":
			fx.Expect = fixture.ExpectAbsent
		}
		out = append(out, fx)
	}
	return out, nil
}

// ExpandPath resolves a leading "~/" against the user's home directory
// and expands environment variables.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %q: %w", path, err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return os.ExpandEnv(path), nil
}

// SearchDir is where Resolve looks for scenario files referenced by
// bare name instead of path.
func SearchDir() string {
	return filepath.Join(xdg.ConfigHome, "termwright", "scenarios")
}

// Resolve maps a CLI argument to a scenario file path: an existing path
// is used as-is, anything else is tried as <SearchDir>/<name>.yml.
func Resolve(arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		return arg, nil
	}
	candidate := filepath.Join(SearchDir(), arg+".yml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("scenario %q not found (looked in %s)", arg, SearchDir())
}
