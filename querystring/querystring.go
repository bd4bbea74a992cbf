// Package querystring decodes URL query strings that use bracket notation
// into nested values. "sort[0][selector]=x" becomes
// {"sort": [{"selector": "x"}]}, "a[]=1&a[]=2" becomes {"a": ["1", "2"]} and a
// plain key repeated several times becomes a list of its values. Leaves are
// always strings.
package querystring

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// ErrConflictingKey is returned when a key is used both as a value and as a
// container, as in "a=1&a[b]=2".
var ErrConflictingKey = errors.New("conflicting query parameter shapes")

// Parse decodes raw, with or without a leading "?". Pairs are processed in
// order; keys and values are unescaped with "+" read as a space.
func Parse(raw string) (map[string]any, error) {
	raw = strings.TrimPrefix(raw, "?")
	root := make(map[string]any)

	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("querystring: key %q: %w", k, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("querystring: value of %q: %w", key, err)
		}
		if key == "" {
			continue
		}
		if err := insert(root, splitKey(key), value); err != nil {
			return nil, fmt.Errorf("querystring: %q: %w", key, err)
		}
	}

	for k, v := range root {
		root[k] = compact(v)
	}
	return root, nil
}

// FromValues decodes already split query values, such as url.URL.Query().
// Keys are processed in sorted order.
func FromValues(values url.Values) (map[string]any, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	root := make(map[string]any)
	for _, key := range keys {
		if key == "" {
			continue
		}
		for _, value := range values[key] {
			if err := insert(root, splitKey(key), value); err != nil {
				return nil, fmt.Errorf("querystring: %q: %w", key, err)
			}
		}
	}

	for k, v := range root {
		root[k] = compact(v)
	}
	return root, nil
}

// splitKey splits "a[b][]" into ["a", "b", ""]. Keys that are not a name
// followed by complete bracket segments are returned whole.
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return []string{key}
	}

	segments := []string{key[:open]}
	rest := key[open:]
	for rest != "" {
		if rest[0] != '[' {
			return []string{key}
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return []string{key}
		}
		segments = append(segments, rest[1:end])
		rest = rest[end+1:]
	}
	return segments
}

func insert(m map[string]any, segments []string, value string) error {
	key := segments[0]
	if key == "" {
		key = nextIndex(m)
	}

	if len(segments) == 1 {
		switch existing := m[key].(type) {
		case nil:
			m[key] = value
		case string:
			m[key] = []any{existing, value}
		case []any:
			m[key] = append(existing, value)
		default:
			return ErrConflictingKey
		}
		return nil
	}

	child, ok := m[key]
	if !ok {
		child = make(map[string]any)
		m[key] = child
	}
	next, ok := child.(map[string]any)
	if !ok {
		return ErrConflictingKey
	}
	return insert(next, segments[1:], value)
}

// nextIndex returns the index an appended "[]" segment takes in m.
func nextIndex(m map[string]any) string {
	next := 0
	for k := range m {
		if i, ok := index(k); ok && i >= next {
			next = i + 1
		}
	}
	return strconv.Itoa(next)
}

// index parses canonical non-negative integers; "01" and "-1" are names.
func index(k string) (int, bool) {
	i, err := strconv.Atoi(k)
	if err != nil || i < 0 || strconv.Itoa(i) != k {
		return 0, false
	}
	return i, true
}

// compact turns maps whose keys are all indexes into lists ordered by index.
// Gaps are dropped.
func compact(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}

	indexes := make([]int, 0, len(m))
	for k := range m {
		i, ok := index(k)
		if !ok {
			indexes = nil
			break
		}
		indexes = append(indexes, i)
	}

	if len(indexes) == 0 {
		for k, child := range m {
			m[k] = compact(child)
		}
		return m
	}

	slices.Sort(indexes)
	list := make([]any, len(indexes))
	for j, i := range indexes {
		list[j] = compact(m[strconv.Itoa(i)])
	}
	return list
}
