// Package natives holds documentation metadata for the evaluator's
// built-in functions: name, arity, parameter names, and a one-line
// summary, loaded from a YAML manifest rather than hand-built as Go
// literals. cmd/sage's REPL uses it for tab completion and the
// :describe command, the way pkg/parsley's help package reads
// registry metadata to answer `pars describe`.
package natives

import (
	_ "embed"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml
var manifestYAML []byte

// Doc documents one native function.
type Doc struct {
	Name    string   `yaml:"name"`
	Arity   string   `yaml:"arity"`
	Params  []string `yaml:"params"`
	Summary string   `yaml:"summary"`
}

var byName map[string]*Doc

func init() {
	var docs []*Doc
	if err := yaml.Unmarshal(manifestYAML, &docs); err != nil {
		panic("natives: invalid manifest.yaml: " + err.Error())
	}
	byName = make(map[string]*Doc, len(docs))
	for _, d := range docs {
		byName[d.Name] = d
	}
}

// Describe looks up a native function's documentation by name.
func Describe(name string) (*Doc, bool) {
	d, ok := byName[name]
	return d, ok
}

// Names returns every documented native function's name, sorted.
func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
