package reconcile

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PathStep is one step into a nested value: a mapping key or a sequence index.
type PathStep struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path locates a value inside a document. The empty path is the root.
type Path []PathStep

// Key returns a new path extended by a mapping key.
func (p Path) Key(k string) Path {
	return p.extend(PathStep{Key: k})
}

// Index returns a new path extended by a sequence index.
func (p Path) Index(i int) Path {
	return p.extend(PathStep{Index: i, IsIndex: true})
}

func (p Path) extend(step PathStep) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, step)
}

// String renders the path as "a.b[2].c". The root renders as ".".
func (p Path) String() string {
	if len(p) == 0 {
		return "."
	}
	var b strings.Builder
	for i, step := range p {
		if step.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(step.Index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(step.Key)
	}
	return b.String()
}

// MarshalJSON encodes the path in its rendered form.
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// MarshalYAML encodes the path in its rendered form.
func (p Path) MarshalYAML() (any, error) {
	return p.String(), nil
}
