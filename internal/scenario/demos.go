package scenario

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed demos/*.yaml
var demoFS embed.FS

// Demos returns the built-in scenarios sorted by name.
func Demos() ([]*Scenario, error) {
	entries, err := fs.ReadDir(demoFS, "demos")
	if err != nil {
		return nil, err
	}
	out := make([]*Scenario, 0, len(entries))
	for _, e := range entries {
		p := path.Join("demos", e.Name())
		b, err := demoFS.ReadFile(p)
		if err != nil {
			return nil, err
		}
		sc, err := Parse(p, b)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Demo returns the built-in scenario with the given name.
func Demo(name string) (*Scenario, error) {
	all, err := Demos()
	if err != nil {
		return nil, err
	}
	for _, sc := range all {
		if strings.EqualFold(sc.Name, name) {
			return sc, nil
		}
	}
	return nil, fmt.Errorf("unknown demo %q", name)
}
