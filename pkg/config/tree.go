package config

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ScalarKind distinguishes the scalar flavors of the dialect.
type ScalarKind int

const (
	ScalarString    ScalarKind = iota
	ScalarNumber               // numeric literal, coercible at output time
	ScalarBool                 // flag-only property
	ScalarReference            // /Partition/name shaped cross-object path
)

// Value is a parsed configuration value: Scalar, List, or Block.
type Value interface {
	isValue()
}

// Scalar is a single-token value. The text is always kept verbatim;
// Kind only changes how the value is rendered.
type Scalar struct {
	Kind ScalarKind
	Text string
}

func (Scalar) isValue() {}

// True is the flag-only scalar (a bare key with no value).
var True = Scalar{Kind: ScalarBool, Text: "true"}

// MarshalJSON renders the scalar according to its kind.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case ScalarBool:
		if s.Text == "false" {
			return []byte("false"), nil
		}
		return []byte("true"), nil
	case ScalarNumber:
		return []byte(s.Text), nil
	default:
		return json.Marshal(s.Text)
	}
}

// List is an ordered sequence of values.
type List []Value

func (List) isValue() {}

func (l List) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, v := range l {
		if i > 0 {
			b.WriteByte(',')
		}
		item, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		b.Write(item)
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

// Entry is one key/value pair inside a Block. Keys may repeat; the
// normalizer folds repeats into a List.
type Entry struct {
	Key   string
	Value Value
}

// Block is an ordered mapping of keys to values.
type Block struct {
	Entries []Entry
}

func (*Block) isValue() {}

// Add appends an entry, preserving order and repetition.
func (b *Block) Add(key string, v Value) {
	b.Entries = append(b.Entries, Entry{Key: key, Value: v})
}

// set replaces the first entry stored under key, appending when absent.
func (b *Block) set(key string, v Value) {
	for i, e := range b.Entries {
		if e.Key == key {
			b.Entries[i].Value = v
			return
		}
	}
	b.Add(key, v)
}

// Get returns the first value stored under key.
func (b *Block) Get(key string) (Value, bool) {
	for _, e := range b.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns the block's keys in order, including repeats.
func (b *Block) Keys() []string {
	keys := make([]string, len(b.Entries))
	for i, e := range b.Entries {
		keys[i] = e.Key
	}
	return keys
}

// Len returns the number of entries.
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Entries)
}

// MarshalJSON renders the block as a JSON object in entry order.
// Repeated keys are emitted as-is; callers wanting well-formed JSON
// run the normalizer first.
func (b *Block) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Object is one configuration declaration, e.g.
// "ltm virtual /Common/vs_http { ... }".
type Object struct {
	// TypePath is the object-kind taxonomy, e.g. ["ltm", "virtual"].
	// Always non-empty.
	TypePath []string

	// Name is the object's path-like identifier, stored verbatim.
	// Empty for settings-style objects ("sys global-settings { ... }").
	Name string

	// Props holds the object's body. Never nil.
	Props *Block

	// Raw holds the verbatim body text for objects whose bodies are not
	// configuration grammar (iRules). Empty for regular objects.
	Raw string

	// Line/Column where the declaration starts (for error reporting).
	Line   int
	Column int
}

// Type returns the joined type path, e.g. "ltm virtual".
func (o *Object) Type() string {
	return strings.Join(o.TypePath, " ")
}

// Tree is the root container of a parsed configuration file.
type Tree struct {
	Objects []*Object
}

// Find returns the first object with the given joined type path and name.
func (t *Tree) Find(typ, name string) *Object {
	for _, o := range t.Objects {
		if o.Type() == typ && o.Name == name {
			return o
		}
	}
	return nil
}

// Group is the set of objects sharing one type path, in insertion order.
type Group struct {
	Type    string
	Objects []*Object
}

// Groups buckets the tree's objects by joined type path, preserving
// first-seen order of each distinct type and insertion order within.
func (t *Tree) Groups() []Group {
	var groups []Group
	index := make(map[string]int)
	for _, o := range t.Objects {
		typ := o.Type()
		i, ok := index[typ]
		if !ok {
			i = len(groups)
			index[typ] = i
			groups = append(groups, Group{Type: typ})
		}
		groups[i].Objects = append(groups[i].Objects, o)
	}
	return groups
}

// Keyed reports whether every object in the group has a distinct
// non-empty name, making the name a safe mapping key for output.
func (g Group) Keyed() bool {
	return namesUsable(g.Objects)
}

// Clone creates a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := &Tree{Objects: make([]*Object, len(t.Objects))}
	for i, o := range t.Objects {
		out.Objects[i] = &Object{
			TypePath: append([]string(nil), o.TypePath...),
			Name:     o.Name,
			Props:    cloneBlock(o.Props),
			Raw:      o.Raw,
			Line:     o.Line,
			Column:   o.Column,
		}
	}
	return out
}

func cloneBlock(b *Block) *Block {
	if b == nil {
		return &Block{}
	}
	out := &Block{Entries: make([]Entry, len(b.Entries))}
	for i, e := range b.Entries {
		out.Entries[i] = Entry{Key: e.Key, Value: cloneValue(e.Value)}
	}
	return out
}

func cloneValue(v Value) Value {
	switch v := v.(type) {
	case Scalar:
		return v
	case List:
		out := make(List, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case *Block:
		return cloneBlock(v)
	default:
		return v
	}
}

// MarshalJSON renders the tree grouped by type path. Each group becomes
// a top-level key; the group body is keyed by object name when every
// object in the group has a distinct name, collapses to the bare
// properties for a single unnamed object, and degrades to an array of
// {name, properties} records otherwise.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range t.Groups() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(g.Type)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		body, err := marshalGroup(g)
		if err != nil {
			return nil, err
		}
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalGroup(g Group) ([]byte, error) {
	if len(g.Objects) == 1 && g.Objects[0].Name == "" {
		return marshalObjectBody(g.Objects[0])
	}

	if g.Keyed() {
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, o := range g.Objects {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(o.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			body, err := marshalObjectBody(o)
			if err != nil {
				return nil, err
			}
			buf.Write(body)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}

	// Unnamed or duplicate-named siblings: keep them all, in order.
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, o := range g.Objects {
		if i > 0 {
			buf.WriteByte(',')
		}
		props, err := marshalObjectBody(o)
		if err != nil {
			return nil, err
		}
		name, err := json.Marshal(o.Name)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`{"name":`)
		buf.Write(name)
		buf.WriteString(`,"properties":`)
		buf.Write(props)
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// marshalObjectBody renders an object's body: the raw text for iRule-style
// objects, the properties block otherwise.
func marshalObjectBody(o *Object) ([]byte, error) {
	if o.Raw != "" {
		return json.Marshal(o.Raw)
	}
	return json.Marshal(o.Props)
}

// namesUsable reports whether every object in the group carries a
// distinct non-empty name, making name a safe mapping key.
func namesUsable(objects []*Object) bool {
	seen := make(map[string]bool, len(objects))
	for _, o := range objects {
		if o.Name == "" || seen[o.Name] {
			return false
		}
		seen[o.Name] = true
	}
	return true
}
