// Package levels holds the five-step mastery ladder every topic is
// taught on.
package levels

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Min and Max bound every valid level number.
const (
	Min = 1
	Max = 5
)

// ErrInvalidLevel is returned for level numbers outside [Min, Max].
var ErrInvalidLevel = errors.New("level must be between 1 and 5")

// Level describes one rung of the ladder.
type Level struct {
	Number int    `yaml:"number" json:"number"`
	Name   string `yaml:"name" json:"name"`
	Focus  string `yaml:"focus" json:"focus"`
	// Format is the lesson presentation the client renders.
	Format string `yaml:"format" json:"format"`
	// Diagram and Lesson steer lesson generation at this level.
	Diagram string `yaml:"diagram" json:"-"`
	Lesson  string `yaml:"lesson" json:"-"`
}

// Label is the human-readable "Name (Focus)" form.
func (l Level) Label() string {
	return fmt.Sprintf("%s (%s)", l.Name, l.Focus)
}

//go:embed catalog.yaml
var catalogYAML []byte

var catalog = mustParse(catalogYAML)

func mustParse(data []byte) []Level {
	var out []Level
	if err := yaml.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("levels: parse catalog: %v", err))
	}
	if len(out) != Max {
		panic(fmt.Sprintf("levels: catalog has %d levels, want %d", len(out), Max))
	}
	for i, l := range out {
		if l.Number != i+1 {
			panic(fmt.Sprintf("levels: entry %d has number %d", i, l.Number))
		}
	}
	return out
}

// Validate returns ErrInvalidLevel when n is outside [Min, Max].
func Validate(n int) error {
	if n < Min || n > Max {
		return fmt.Errorf("%w: got %d", ErrInvalidLevel, n)
	}
	return nil
}

// Get returns the catalog entry for level n.
func Get(n int) (Level, error) {
	if err := Validate(n); err != nil {
		return Level{}, err
	}
	return catalog[n-1], nil
}

// Label returns the label for n, or "" when n is out of range.
func Label(n int) string {
	l, err := Get(n)
	if err != nil {
		return ""
	}
	return l.Label()
}

// All returns a copy of the catalog, lowest level first.
func All() []Level {
	out := make([]Level, len(catalog))
	copy(out, catalog)
	return out
}

// Below is the level one step down, never below Min. It is both the
// diagnostic level for an entry check and the demotion target.
func Below(n int) int {
	return max(Min, n-1)
}

// Above is the level one step up, never above Max.
func Above(n int) int {
	return min(Max, n+1)
}
