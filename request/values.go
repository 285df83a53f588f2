// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// A Field is one key of a Values tree. Value is either a scalar,
// formatted with fmt.Sprint, or a nested Values, map[string]interface{},
// []interface{} or []string.
type Field struct {
	Key   string
	Value interface{}
}

// Values is an ordered, possibly nested, set of form fields. Unlike
// url.Values it preserves insertion order and supports nesting, which
// is encoded with bracketed key paths:
//
//	request.Values{
//		{"a", 1},
//		{"b", request.Values{{"c", 2}}},
//	}.Encode() == "a=1&b[c]=2"
type Values []Field

// Add returns v with a field appended.
func (v Values) Add(key string, value interface{}) Values {
	return append(v, Field{Key: key, Value: value})
}

// Pairs flattens v into its ordered key=value pairs. Keys and values are
// query-escaped; the brackets delimiting nested keys are not.
func (v Values) Pairs() []string {
	return flatten(nil, "", v)
}

// Encode returns the pairs of v joined with '&'.
func (v Values) Encode() string {
	return strings.Join(v.Pairs(), "&")
}

// FromMap converts a nested map into Values. Go maps are unordered, so
// keys are sorted at every level to make the encoding deterministic.
func FromMap(m map[string]interface{}) Values {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	v := make(Values, 0, len(m))
	for _, k := range keys {
		v = append(v, Field{Key: k, Value: m[k]})
	}
	return v
}

func flatten(out []string, prefix string, v Values) []string {
	for _, f := range v {
		out = flattenValue(out, keyPath(prefix, f.Key), f.Value)
	}
	return out
}

func flattenValue(out []string, key string, value interface{}) []string {
	switch x := value.(type) {
	case Values:
		return flatten(out, key, x)
	case map[string]interface{}:
		return flatten(out, key, FromMap(x))
	case []interface{}:
		for _, e := range x {
			out = flattenValue(out, key+"[]", e)
		}
		return out
	case []string:
		for _, e := range x {
			out = append(out, key+"[]="+url.QueryEscape(e))
		}
		return out
	case nil:
		return append(out, key+"=")
	default:
		return append(out, key+"="+url.QueryEscape(fmt.Sprint(x)))
	}
}

func keyPath(prefix, key string) string {
	k := url.QueryEscape(key)
	if prefix == "" {
		return k
	}
	return prefix + "[" + k + "]"
}
