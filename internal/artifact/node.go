// Package artifact plans and writes the directory layout produced by an
// analysis.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/z58362026/mcp-packages/pkg/schema"
)

// Node is an entry in an artifact tree: either a *Dir or a File.
type Node interface {
	isNode()
}

// File is a leaf holding text content.
type File string

func (File) isNode() {}

// Dir is an internal node with uniquely named children.
type Dir struct {
	children map[string]Node
}

func (*Dir) isNode() {}

// NewDir returns an empty directory.
func NewDir() *Dir {
	return &Dir{children: make(map[string]Node)}
}

// Set adds or replaces a child and returns d for chaining.
func (d *Dir) Set(name string, child Node) *Dir {
	if d.children == nil {
		d.children = make(map[string]Node)
	}
	d.children[name] = child
	return d
}

// Get returns the named child.
func (d *Dir) Get(name string) (Node, bool) {
	child, ok := d.children[name]
	return child, ok
}

// Names returns child names in sorted order.
func (d *Dir) Names() []string {
	return slices.Sorted(maps.Keys(d.children))
}

// Len returns the number of children.
func (d *Dir) Len() int {
	return len(d.children)
}

// MkdirPath walks a slash separated path below d, creating directories as
// needed, and returns the innermost one. An existing file on the way is
// replaced by a directory.
func (d *Dir) MkdirPath(elems ...string) *Dir {
	cur := d
	for _, name := range elems {
		next, ok := cur.children[name].(*Dir)
		if !ok {
			next = NewDir()
			cur.Set(name, next)
		}
		cur = next
	}
	return cur
}

// MarshalJSON encodes directories as objects and files as strings.
func (d *Dir) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range d.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(d.children[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object tree. Nested objects become directories,
// strings become files; anything else is rejected.
func (d *Dir) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: artifact tree must be an object: %w", schema.ErrValidation, err)
	}

	d.children = make(map[string]Node, len(raw))
	for name, value := range raw {
		node, err := decodeNode(name, value)
		if err != nil {
			return err
		}
		d.children[name] = node
	}
	return nil
}

func decodeNode(name string, value json.RawMessage) (Node, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return nil, schema.Validationf("artifact %q has no value", name)
	}

	switch trimmed[0] {
	case '{':
		child := NewDir()
		if err := child.UnmarshalJSON(trimmed); err != nil {
			return nil, err
		}
		return child, nil
	case '"':
		var content string
		if err := json.Unmarshal(trimmed, &content); err != nil {
			return nil, fmt.Errorf("%w: artifact %q: %w", schema.ErrValidation, name, err)
		}
		return File(content), nil
	default:
		return nil, schema.Validationf("artifact %q must be an object or a string", name)
	}
}

// ParseTree decodes a JSON artifact tree.
func ParseTree(data []byte) (*Dir, error) {
	root := NewDir()
	if err := root.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return root, nil
}
