// internal/resultstree/node.go
// Package resultstree holds the field-test results document as an immutable,
// order-preserving JSON tree.
package resultstree

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Kind identifies the JSON type held by a Node.
type Kind int

const (
	// Null is a JSON null.
	Null Kind = iota
	// Bool is a JSON boolean.
	Bool
	// Number is a JSON number.
	Number
	// String is a JSON string.
	String
	// Array is a JSON array.
	Array
	// Object is a JSON object whose members keep source order.
	Object
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "null"
	}
}

// Member is one key/value pair of an object node.
type Member struct {
	Key   string
	Value *Node
}

// Node is a single value in the results tree. A nil *Node stands for a value
// that is absent from the document; every accessor accepts a nil receiver.
type Node struct {
	kind    Kind
	text    string
	number  json.Number
	boolean bool
	items   []*Node
	members []Member
	index   map[string]int
}

// NewObject builds an object node from members in the given order. A repeated
// key keeps its first position and takes the later value.
func NewObject(members ...Member) *Node {
	n := &Node{kind: Object, index: make(map[string]int, len(members))}
	for _, m := range members {
		n.set(m.Key, m.Value)
	}
	return n
}

// NewString builds a string node.
func NewString(s string) *Node { return &Node{kind: String, text: s} }

// NewNumber builds a number node.
func NewNumber(f float64) *Node {
	return &Node{kind: Number, number: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

func (n *Node) set(key string, value *Node) {
	if value == nil {
		value = &Node{kind: Null}
	}
	if i, ok := n.index[key]; ok {
		n.members[i].Value = value
		return
	}
	n.index[key] = len(n.members)
	n.members = append(n.members, Member{Key: key, Value: value})
}

// Kind reports the JSON type of n. Absent values report Null.
func (n *Node) Kind() Kind {
	if n == nil {
		return Null
	}
	return n.kind
}

// IsObject reports whether n is a JSON object.
func (n *Node) IsObject() bool { return n != nil && n.kind == Object }

// Len returns the number of object members or array items.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.kind {
	case Object:
		return len(n.members)
	case Array:
		return len(n.items)
	}
	return 0
}

// Members returns the object members in source order.
func (n *Node) Members() []Member {
	if !n.IsObject() {
		return nil
	}
	return n.members
}

// Keys returns the object keys in source order.
func (n *Node) Keys() []string {
	if !n.IsObject() {
		return nil
	}
	keys := make([]string, len(n.members))
	for i, m := range n.members {
		keys[i] = m.Key
	}
	return keys
}

// Has reports whether the object n has a member named key.
func (n *Node) Has(key string) bool {
	if !n.IsObject() {
		return false
	}
	_, ok := n.index[key]
	return ok
}

// Child returns the member named key, or nil.
func (n *Node) Child(key string) *Node {
	if !n.IsObject() {
		return nil
	}
	i, ok := n.index[key]
	if !ok {
		return nil
	}
	return n.members[i].Value
}

// Get walks path from n and returns the node found there, or nil as soon as a
// segment is missing.
func (n *Node) Get(path ...string) *Node {
	cur := n
	for _, key := range path {
		cur = cur.Child(key)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Items returns the array items.
func (n *Node) Items() []*Node {
	if n == nil || n.kind != Array {
		return nil
	}
	return n.items
}

// Float returns the numeric value of n. It reports false for anything that is
// not a finite JSON number.
func (n *Node) Float() (float64, bool) {
	if n == nil || n.kind != Number {
		return 0, false
	}
	f, err := n.number.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FloatPtr returns the numeric value of n as a pointer, nil when n is not a
// finite number.
func (n *Node) FloatPtr() *float64 {
	f, ok := n.Float()
	if !ok {
		return nil
	}
	return &f
}

// Text returns the string value of n.
func (n *Node) Text() (string, bool) {
	if n == nil || n.kind != String {
		return "", false
	}
	return n.text, true
}

// Bool returns the boolean value of n.
func (n *Node) Bool() (bool, bool) {
	if n == nil || n.kind != Bool {
		return false, false
	}
	return n.boolean, true
}

// MarshalJSON encodes n back to JSON, keeping object member order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) encode(buf *bytes.Buffer) error {
	switch n.Kind() {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(n.boolean))
	case Number:
		buf.WriteString(n.number.String())
	case String:
		data, err := json.Marshal(n.text)
		if err != nil {
			return err
		}
		buf.Write(data)
	case Array:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range n.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}
