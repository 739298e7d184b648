package main

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/tidwall/gjson"
)

// ParseJSON reads items from JSON. Accepted shapes:
//
//	[{"name": "Negroni", "requires": ["gin", "campari", "vermouth"]}, ...]
//	{"Negroni": ["gin", "campari", "vermouth"], ...}
//	{"budget": 12, "items": <either of the above>}
//
// An envelope budget is returned in Input.Budget.
func ParseJSON(data string, strict bool, log logr.Logger) (*Input, error) {
	if !gjson.Valid(data) {
		return nil, errors.New("input is not valid JSON")
	}
	f := newRecordFilter(strict, log)

	root := gjson.Parse(data)
	items := root
	if root.IsObject() && root.Get("items").Exists() {
		items = root.Get("items")
		if b := root.Get("budget"); b.Exists() {
			if b.Type != gjson.Number || b.Int() < 0 {
				return nil, fmt.Errorf("budget must be a non-negative number, got %s", b.Raw)
			}
			budget := int(b.Int())
			f.in.Budget = &budget
		}
	}

	switch {
	case items.IsArray():
		pos := 0
		items.ForEach(func(_, el gjson.Result) bool {
			pos++
			if !el.IsObject() {
				f.reject(pos, el.Raw, "item is not an object")
				return true
			}
			name := el.Get("name")
			if name.Type != gjson.String {
				f.reject(pos, el.Raw, "empty item name")
				return true
			}
			reqs, ok := readStringArray(el.Get("requires"))
			if !ok {
				f.reject(pos, el.Raw, "requires is not an array of strings")
				return true
			}
			f.add(pos, el.Raw, name.String(), reqs)
			return true
		})
	case items.IsObject():
		pos := 0
		items.ForEach(func(key, value gjson.Result) bool {
			pos++
			reqs, ok := readStringArray(value)
			if !ok {
				f.reject(pos, value.Raw, "requires is not an array of strings")
				return true
			}
			f.add(pos, key.String(), key.String(), reqs)
			return true
		})
	default:
		return nil, fmt.Errorf("expected an array or object of items, got %s", items.Type)
	}

	return f.result()
}

// readStringArray returns the strings of a JSON array. A missing value is an
// empty requirement list.
func readStringArray(v gjson.Result) ([]string, bool) {
	if !v.Exists() {
		return nil, true
	}
	if !v.IsArray() {
		return nil, false
	}
	var out []string
	ok := true
	v.ForEach(func(_, e gjson.Result) bool {
		if e.Type != gjson.String {
			ok = false
			return false
		}
		out = append(out, e.String())
		return true
	})
	return out, ok
}
