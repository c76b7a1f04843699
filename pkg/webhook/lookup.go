package webhook

import (
	"github.com/buger/jsonparser"
)

// node is a raw JSON value located inside a webhook payload.
// A nil node stands for an absent value: every lookup on it yields absent too,
// so deep chains never fail on a missing intermediate object.
type node []byte

// get returns the value at the given path, or nil when any key along the
// path is missing, out of range, null or of the wrong container type.
func (n node) get(keys ...string) node {
	if n == nil {
		return nil
	}
	v, t, _, err := jsonparser.Get(n, keys...)
	if err != nil {
		return nil
	}
	switch t {
	case jsonparser.Object, jsonparser.Array:
		return v
	}
	return nil
}

func (n node) str(keys ...string) *string {
	if n == nil {
		return nil
	}
	s, err := jsonparser.GetString(n, keys...)
	if err != nil {
		return nil
	}
	return &s
}

// text is str with absent mapped to the empty string.
func (n node) text(keys ...string) string {
	if s := n.str(keys...); s != nil {
		return *s
	}
	return ""
}

func (n node) boolean(keys ...string) *bool {
	if n == nil {
		return nil
	}
	b, err := jsonparser.GetBoolean(n, keys...)
	if err != nil {
		return nil
	}
	return &b
}

func (n node) integer(keys ...string) int {
	if n == nil {
		return 0
	}
	if i, err := jsonparser.GetInt(n, keys...); err == nil {
		return int(i)
	}
	if f, err := jsonparser.GetFloat(n, keys...); err == nil {
		return int(f)
	}
	return 0
}

func (n node) number(keys ...string) float64 {
	if n == nil {
		return 0
	}
	f, err := jsonparser.GetFloat(n, keys...)
	if err != nil {
		return 0
	}
	return f
}

// array returns the elements of the array at path and whether an array was
// found there at all. Null elements come back as nil nodes.
func (n node) array(keys ...string) ([]node, bool) {
	if n == nil {
		return nil, false
	}
	if _, t, _, err := jsonparser.Get(n, keys...); err != nil || t != jsonparser.Array {
		return nil, false
	}
	var items []node
	_, err := jsonparser.ArrayEach(n, func(value []byte, t jsonparser.ValueType, _ int, _ error) {
		if t == jsonparser.Object || t == jsonparser.Array {
			items = append(items, node(value))
			return
		}
		items = append(items, nil)
	}, keys...)
	if err != nil {
		return nil, false
	}
	return items, true
}
