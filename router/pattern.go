package router

import (
	"fmt"
	"net/url"
	"strings"
)

// segmentKind tags the shape of one compiled pattern segment.
type segmentKind int

const (
	segLiteral segmentKind = iota // "view"
	segParam                      // ":project" or "@:version"
	segPair                       // ":old..:new"
	segRest                       // ":path*", always last
)

// segment is one "/"-delimited piece of a compiled pattern.
type segment struct {
	kind  segmentKind
	lit   string // literal text, or the prefix of a param segment
	name  string // param name (left name for pairs)
	right string // right param name of a pair
	sep   string // separator of a pair
}

// Pattern is a compiled path template.
type Pattern struct {
	raw      string
	segments []segment
}

// String returns the template the pattern was compiled from.
func (p Pattern) String() string { return p.raw }

// IsCatchAll reports whether the pattern ends in a remainder segment.
func (p Pattern) IsCatchAll() bool {
	return len(p.segments) > 0 && p.segments[len(p.segments)-1].kind == segRest
}

// ParamNames lists the parameters the pattern extracts, in order.
func (p Pattern) ParamNames() []string {
	var names []string
	for _, s := range p.segments {
		switch s.kind {
		case segParam, segRest:
			names = append(names, s.name)
		case segPair:
			names = append(names, s.name, s.right)
		}
	}
	return names
}

// ParsePattern compiles a template such as "/projects/:project/:old..:new".
func ParsePattern(raw string) (Pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return Pattern{}, fmt.Errorf("pattern %q must start with /", raw)
	}
	p := Pattern{raw: raw}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return p, nil
	}
	parts := strings.Split(trimmed, "/")
	seen := map[string]bool{}
	for i, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return Pattern{}, fmt.Errorf("pattern %q: %w", raw, err)
		}
		if seg.kind == segRest && i != len(parts)-1 {
			return Pattern{}, fmt.Errorf("pattern %q: remainder %q must be the last segment", raw, part)
		}
		for _, n := range []string{seg.name, seg.right} {
			if n == "" {
				continue
			}
			if seen[n] {
				return Pattern{}, fmt.Errorf("pattern %q: duplicate parameter %q", raw, n)
			}
			seen[n] = true
		}
		p.segments = append(p.segments, seg)
	}
	return p, nil
}

func parseSegment(part string) (segment, error) {
	colon := strings.IndexByte(part, ':')
	if colon < 0 {
		return segment{kind: segLiteral, lit: part}, nil
	}
	prefix, rest := part[:colon], part[colon+1:]

	if strings.HasSuffix(rest, "*") {
		name := strings.TrimSuffix(rest, "*")
		if prefix != "" || !isParamName(name) {
			return segment{}, fmt.Errorf("invalid remainder segment %q", part)
		}
		return segment{kind: segRest, name: name}, nil
	}

	nameEnd := 0
	for nameEnd < len(rest) && isNameByte(rest[nameEnd]) {
		nameEnd++
	}
	name := rest[:nameEnd]
	if name == "" {
		return segment{}, fmt.Errorf("missing parameter name in %q", part)
	}
	if nameEnd == len(rest) {
		return segment{kind: segParam, lit: prefix, name: name}, nil
	}

	// Two parameters in one segment: name, literal separator, second name.
	if prefix != "" {
		return segment{}, fmt.Errorf("prefixed pair segment %q is not supported", part)
	}
	tail := rest[nameEnd:]
	colon = strings.IndexByte(tail, ':')
	if colon <= 0 {
		return segment{}, fmt.Errorf("invalid segment %q", part)
	}
	sep, right := tail[:colon], tail[colon+1:]
	if !isParamName(right) {
		return segment{}, fmt.Errorf("invalid parameter %q in %q", right, part)
	}
	if right == name {
		return segment{}, fmt.Errorf("duplicate parameter %q in %q", name, part)
	}
	return segment{kind: segPair, name: name, sep: sep, right: right}, nil
}

func isNameByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func isParamName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return true
}

// Match reports whether path (already normalized, without query or hash)
// fits the pattern, returning the extracted parameters.
func (p Pattern) Match(path string) (map[string]string, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	var parts []string
	if trimmed != "" {
		parts = strings.Split(trimmed, "/")
	}

	params := map[string]string{}
	for i, seg := range p.segments {
		if seg.kind == segRest {
			params[seg.name] = unescape(strings.Join(parts[i:], "/"))
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}
		part := parts[i]
		switch seg.kind {
		case segLiteral:
			if !strings.EqualFold(part, seg.lit) {
				return nil, false
			}
		case segParam:
			if len(part) <= len(seg.lit) || !strings.EqualFold(part[:len(seg.lit)], seg.lit) {
				return nil, false
			}
			params[seg.name] = unescape(part[len(seg.lit):])
		case segPair:
			idx := strings.Index(part, seg.sep)
			if idx <= 0 || idx+len(seg.sep) >= len(part) {
				return nil, false
			}
			params[seg.name] = unescape(part[:idx])
			params[seg.right] = unescape(part[idx+len(seg.sep):])
		}
	}
	if len(parts) != len(p.segments) {
		return nil, false
	}
	return params, true
}

func unescape(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}
