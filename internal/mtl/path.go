package mtl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrKeyNotFound            = errors.New("key not found")
	ErrNotNumeric             = errors.New("value is not numeric")
	ErrMissingConfiguration   = errors.New("missing configuration")
	ErrMalformedConfiguration = errors.New("malformed configuration line")
	ErrUnbalancedGroup        = errors.New("unbalanced group")
)

// Node is either a Group or a Value.
type Node interface {
	node()
}

// Group is a named set of nodes, one per GROUP block of the metadata file.
type Group map[string]Node

func (Group) node() {}

// Get walks root by keys. An empty key list returns root.
func Get(root Group, keys ...string) (Node, error) {
	var cur Node = root
	for i, key := range keys {
		g, ok := cur.(Group)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a group", ErrKeyNotFound, pathString(keys[:i]))
		}
		next, ok := g[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, pathString(keys[:i+1]))
		}
		cur = next
	}
	return cur, nil
}

// Set stores node under the last key, inside the group reached by the
// others. Intermediate groups must already exist.
func Set(root Group, keys []string, node Node) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: empty path", ErrKeyNotFound)
	}
	parent, err := GetGroup(root, keys[:len(keys)-1]...)
	if err != nil {
		return err
	}
	parent[keys[len(keys)-1]] = node
	return nil
}

func GetGroup(root Group, keys ...string) (Group, error) {
	n, err := Get(root, keys...)
	if err != nil {
		return nil, err
	}
	g, ok := n.(Group)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a group", ErrKeyNotFound, pathString(keys))
	}
	return g, nil
}

func GetValue(root Group, keys ...string) (Value, error) {
	n, err := Get(root, keys...)
	if err != nil {
		return Value{}, err
	}
	v, ok := n.(Value)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s is a group", ErrKeyNotFound, pathString(keys))
	}
	return v, nil
}

// FloatAt returns the numeric leaf at keys.
func FloatAt(root Group, keys ...string) (float64, error) {
	v, err := GetValue(root, keys...)
	if err != nil {
		return 0, err
	}
	f, err := v.Float()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", pathString(keys), err)
	}
	return f, nil
}

// StringAt renders the leaf at keys.
func StringAt(root Group, keys ...string) (string, error) {
	v, err := GetValue(root, keys...)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func pathString(keys []string) string {
	if len(keys) == 0 {
		return "<root>"
	}
	return strings.Join(keys, ".")
}
