package weave

import (
	"encoding/json"
	"strings"
)

// Entity is one extracted mention with its surrounding context
type Entity struct {
	Name    string `json:"name"`
	Context string `json:"context"`
}

// Bundle is the parsed result of one extraction query
type Bundle struct {
	Projects []Entity `json:"projects"`
	People   []Entity `json:"people"`
	Ideas    []Entity `json:"ideas"`
}

// EmptyBundle returns a bundle with all categories empty
func EmptyBundle() Bundle {
	return Bundle{
		Projects: []Entity{},
		People:   []Entity{},
		Ideas:    []Entity{},
	}
}

// IsEmpty reports whether the bundle holds no entities at all
func (b Bundle) IsEmpty() bool {
	return len(b.Projects) == 0 && len(b.People) == 0 && len(b.Ideas) == 0
}

// ParseBundle recovers a bundle from raw model output. Strict JSON parse
// first; on failure, the span from the first '{' to the last '}' is tried,
// tolerating commentary the model wraps around the object. When neither
// yields the expected shape the empty bundle comes back with ok=false —
// malformed output is never an error here.
func ParseBundle(raw string) (Bundle, bool) {
	if bundle, ok := tryParse(raw); ok {
		return bundle, true
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if bundle, ok := tryParse(raw[start : end+1]); ok {
			return bundle, true
		}
	}

	return EmptyBundle(), false
}

func tryParse(raw string) (Bundle, bool) {
	var bundle Bundle
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		return Bundle{}, false
	}
	if bundle.Projects == nil {
		bundle.Projects = []Entity{}
	}
	if bundle.People == nil {
		bundle.People = []Entity{}
	}
	if bundle.Ideas == nil {
		bundle.Ideas = []Entity{}
	}
	return bundle, true
}

// CrossLink replaces every literal occurrence of each project and person
// name with a [[name]] wiki-link. Ideas are not linked. Replacement is plain
// substring replace, not word-boundary aware, and entities sharing a
// substring interact in iteration order; the simple strategy is kept
// deliberately and isolated here so it can be swapped wholesale.
func CrossLink(content string, bundle Bundle) string {
	for _, project := range bundle.Projects {
		content = linkName(content, project.Name)
	}
	for _, person := range bundle.People {
		content = linkName(content, person.Name)
	}
	return content
}

func linkName(content, name string) string {
	if name == "" {
		return content
	}
	return strings.ReplaceAll(content, name, "[["+name+"]]")
}
