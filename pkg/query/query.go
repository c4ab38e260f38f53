// Package query turns a list endpoint's raw query string into a document-store
// filter and a sort specification.
//
//	status=active          {"status": "active"}
//	age>=18                {"age": {"$gte": 18}}
//	role=admin,owner       {"role": {"$in": ["admin", "owner"]}}
//	role!=guest            {"role": {"$ne": "guest"}}
//	phone                  {"phone": {"$exists": true}}
//	!image                 {"image": {"$exists": false}}
//	name=/^jo/i            {"name": {"$regex": "^jo", "$options": "i"}}
//	sort=-createdAt,name   [{createdAt desc} {name asc}]
package query

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// SortField is one ordering instruction.
type SortField struct {
	Field string
	Desc  bool
}

// Parsed is the result of Parse.
type Parsed struct {
	Filter map[string]any
	Sort   []SortField
}

// Keys that control paging/projection and never become filters.
var reservedKeys = map[string]struct{}{
	"sort":       {},
	"skip":       {},
	"limit":      {},
	"fields":     {},
	"projection": {},
	"populate":   {},
}

var (
	// order matters: two-char operators are tried first
	operators = []struct {
		token string
		op    string
	}{
		{">=", "$gte"},
		{"<=", "$lte"},
		{"!=", "$ne"},
		{">", "$gt"},
		{"<", "$lt"},
		{"=", ""},
	}
	regexValue = regexp.MustCompile(`^/(.*)/([imxs]*)$`)
	fieldName  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
)

// Parser implements Parse as a value so it can be injected.
type Parser struct{}

func (Parser) Parse(raw string) (Parsed, error) { return Parse(raw) }

// Parse parses raw (with or without a leading '?').
func Parse(raw string) (Parsed, error) {
	out := Parsed{Filter: map[string]any{}}
	raw = strings.TrimPrefix(raw, "?")
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}

	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		term, err := url.QueryUnescape(part)
		if err != nil {
			return Parsed{}, fmt.Errorf("query: bad escape in %q: %w", part, err)
		}

		key, op, value, hasOp := splitTerm(term)
		if !hasOp {
			// bare key: existence check
			exists := true
			if strings.HasPrefix(key, "!") {
				exists = false
				key = key[1:]
			}
			if !fieldName.MatchString(key) {
				continue
			}
			if _, reserved := reservedKeys[key]; reserved {
				continue
			}
			out.Filter[key] = map[string]any{"$exists": exists}
			continue
		}

		if key == "sort" {
			out.Sort = append(out.Sort, parseSort(value)...)
			continue
		}
		if _, reserved := reservedKeys[key]; reserved {
			continue
		}
		if !fieldName.MatchString(key) {
			continue
		}
		mergeCondition(out.Filter, key, op, value)
	}
	return out, nil
}

func splitTerm(term string) (key, op, value string, ok bool) {
	idx := -1
	var matched string
	var mapped string
	for _, o := range operators {
		if i := strings.Index(term, o.token); i > 0 && (idx == -1 || i < idx) {
			idx, matched, mapped = i, o.token, o.op
		}
	}
	if idx == -1 {
		return strings.TrimSpace(term), "", "", false
	}
	return strings.TrimSpace(term[:idx]), mapped, term[idx+len(matched):], true
}

func parseSort(value string) []SortField {
	var out []SortField
	for _, f := range strings.Split(value, ",") {
		f = strings.TrimSpace(f)
		desc := false
		switch {
		case strings.HasPrefix(f, "-"):
			desc = true
			f = f[1:]
		case strings.HasPrefix(f, "+"):
			f = f[1:]
		}
		if f == "" || !fieldName.MatchString(f) {
			continue
		}
		out = append(out, SortField{Field: f, Desc: desc})
	}
	return out
}

func mergeCondition(filter map[string]any, key, op, value string) {
	var cond any
	switch {
	case op == "" && strings.Contains(value, ","):
		cond = map[string]any{"$in": castList(value)}
	case op == "$ne" && strings.Contains(value, ","):
		cond = map[string]any{"$nin": castList(value)}
	case op == "" && regexValue.MatchString(value):
		m := regexValue.FindStringSubmatch(value)
		rx := map[string]any{"$regex": m[1]}
		if m[2] != "" {
			rx["$options"] = m[2]
		}
		cond = rx
	case op == "":
		cond = cast(value)
	default:
		cond = map[string]any{op: cast(value)}
	}

	// age>1&age<9 merges into one operator document
	if prev, ok := filter[key].(map[string]any); ok {
		if next, ok := cond.(map[string]any); ok {
			for k, v := range next {
				prev[k] = v
			}
			return
		}
	}
	filter[key] = cond
}

func castList(value string) []any {
	parts := strings.Split(value, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		out = append(out, cast(p))
	}
	return out
}

// cast converts a raw value into int64, float64, bool, nil or string.
// Quoted values are always strings.
func cast(v string) any {
	if len(v) >= 2 && (v[0] == '"' && v[len(v)-1] == '"' || v[0] == '\'' && v[len(v)-1] == '\'') {
		return v[1 : len(v)-1]
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !strings.ContainsAny(v, "eEnN") {
		return f
	}
	return v
}
