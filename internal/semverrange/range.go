// Package semverrange translates semver requirement strings into
// range sets: unions of half-open (or closed-point) intervals over
// semver.Version that the dependency resolver can intersect, union,
// and test membership against without re-parsing comparator syntax at
// every step.
package semverrange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// interval is a single contiguous range [low, high] with independent
// inclusivity on each bound. A nil bound is unbounded in that
// direction.
type interval struct {
	low      *semver.Version
	lowIncl  bool
	high     *semver.Version
	highIncl bool
}

// Set is a union of disjoint, non-adjacent intervals. The zero value
// is the empty set.
type Set struct {
	intervals []interval
}

// Full returns the range set containing every version.
func Full() Set {
	return Set{intervals: []interval{{}}}
}

// Empty returns the range set containing no versions.
func Empty() Set {
	return Set{}
}

// Singleton returns the range set containing exactly v, including a
// pre-release v that comparator syntax could not express.
func Singleton(v *semver.Version) Set {
	return Set{intervals: []interval{{low: v, lowIncl: true, high: v, highIncl: true}}}
}

// Contains reports whether v falls within s.
func (s Set) Contains(v *semver.Version) bool {
	for _, iv := range s.intervals {
		if intervalContains(iv, v) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether s contains no versions.
func (s Set) IsEmpty() bool {
	return len(s.intervals) == 0
}

func intervalContains(iv interval, v *semver.Version) bool {
	if iv.low != nil {
		c := v.Compare(iv.low)
		if c < 0 || (c == 0 && !iv.lowIncl) {
			return false
		}
	}
	if iv.high != nil {
		c := v.Compare(iv.high)
		if c > 0 || (c == 0 && !iv.highIncl) {
			return false
		}
	}
	return true
}

// Intersect returns the set of versions present in both s and other.
func (s Set) Intersect(other Set) Set {
	var out []interval
	for _, a := range s.intervals {
		for _, b := range other.intervals {
			if iv, ok := intersectIntervals(a, b); ok {
				out = append(out, iv)
			}
		}
	}
	return normalize(out)
}

// Union returns the set of versions present in either s or other.
func (s Set) Union(other Set) Set {
	all := append(append([]interval{}, s.intervals...), other.intervals...)
	return normalize(all)
}

// Complement returns every version not in s.
func (s Set) Complement() Set {
	result := Full()
	for _, iv := range s.intervals {
		result = result.Intersect(complementInterval(iv))
	}
	return result
}

func complementInterval(iv interval) Set {
	var out []interval
	if iv.low != nil {
		out = append(out, interval{high: iv.low, highIncl: !iv.lowIncl})
	}
	if iv.high != nil {
		out = append(out, interval{low: iv.high, lowIncl: !iv.highIncl})
	}
	if len(out) == 0 {
		return Empty()
	}
	return normalize(out)
}

func intersectIntervals(a, b interval) (interval, bool) {
	low, lowIncl := maxBound(a.low, a.lowIncl, b.low, b.lowIncl, true)
	high, highIncl := minBound(a.high, a.highIncl, b.high, b.highIncl, false)

	if low != nil && high != nil {
		c := low.Compare(high)
		if c > 0 {
			return interval{}, false
		}
		if c == 0 && !(lowIncl && highIncl) {
			return interval{}, false
		}
	}
	return interval{low: low, lowIncl: lowIncl, high: high, highIncl: highIncl}, true
}

// maxBound picks the tighter (greater) of two lower bounds. A nil
// bound is -infinity, so any non-nil bound wins over it.
func maxBound(a *semver.Version, aIncl bool, b *semver.Version, bIncl bool, _ bool) (*semver.Version, bool) {
	if a == nil {
		return b, bIncl
	}
	if b == nil {
		return a, aIncl
	}
	c := a.Compare(b)
	switch {
	case c > 0:
		return a, aIncl
	case c < 0:
		return b, bIncl
	default:
		return a, aIncl && bIncl
	}
}

// minBound picks the tighter (lesser) of two upper bounds. A nil
// bound is +infinity, so any non-nil bound wins over it.
func minBound(a *semver.Version, aIncl bool, b *semver.Version, bIncl bool, _ bool) (*semver.Version, bool) {
	if a == nil {
		return b, bIncl
	}
	if b == nil {
		return a, aIncl
	}
	c := a.Compare(b)
	switch {
	case c < 0:
		return a, aIncl
	case c > 0:
		return b, bIncl
	default:
		return a, aIncl && bIncl
	}
}

// normalize sorts intervals and merges any that overlap or touch,
// keeping the set's interval list minimal and ordered.
func normalize(intervals []interval) Set {
	filtered := intervals[:0:0]
	for _, iv := range intervals {
		if iv.low != nil && iv.high != nil {
			c := iv.low.Compare(iv.high)
			if c > 0 || (c == 0 && !(iv.lowIncl && iv.highIncl)) {
				continue
			}
		}
		filtered = append(filtered, iv)
	}
	if len(filtered) == 0 {
		return Set{}
	}

	sortIntervals(filtered)

	merged := []interval{filtered[0]}
	for _, next := range filtered[1:] {
		last := &merged[len(merged)-1]
		if overlapsOrTouches(*last, next) {
			*last = mergeIntervals(*last, next)
			continue
		}
		merged = append(merged, next)
	}
	return Set{intervals: merged}
}

func sortIntervals(intervals []interval) {
	for i := 1; i < len(intervals); i++ {
		for j := i; j > 0 && lessInterval(intervals[j], intervals[j-1]); j-- {
			intervals[j], intervals[j-1] = intervals[j-1], intervals[j]
		}
	}
}

func lessInterval(a, b interval) bool {
	if a.low == nil {
		return b.low != nil
	}
	if b.low == nil {
		return false
	}
	return a.low.LessThan(b.low)
}

func overlapsOrTouches(a, b interval) bool {
	if a.high == nil || b.low == nil {
		return true
	}
	c := a.high.Compare(b.low)
	if c > 0 {
		return true
	}
	if c == 0 && (a.highIncl || b.lowIncl) {
		return true
	}
	return false
}

func mergeIntervals(a, b interval) interval {
	low, lowIncl := minLowBound(a.low, a.lowIncl, b.low, b.lowIncl)
	high, highIncl := maxHighBound(a.high, a.highIncl, b.high, b.highIncl)
	return interval{low: low, lowIncl: lowIncl, high: high, highIncl: highIncl}
}

func minLowBound(a *semver.Version, aIncl bool, b *semver.Version, bIncl bool) (*semver.Version, bool) {
	if a == nil || b == nil {
		return nil, false
	}
	c := a.Compare(b)
	switch {
	case c < 0:
		return a, aIncl
	case c > 0:
		return b, bIncl
	default:
		return a, aIncl || bIncl
	}
}

func maxHighBound(a *semver.Version, aIncl bool, b *semver.Version, bIncl bool) (*semver.Version, bool) {
	if a == nil || b == nil {
		return nil, false
	}
	c := a.Compare(b)
	switch {
	case c > 0:
		return a, aIncl
	case c < 0:
		return b, bIncl
	default:
		return a, aIncl || bIncl
	}
}

var comparatorRe = regexp.MustCompile(`^(=|>=|<=|>|<|~|\^)?\s*(\*|\d+)(?:\.(\*|\d+)(?:\.(\*|\d+))?)?$`)

type comparator struct {
	op       string
	major    uint64
	minor    *uint64
	patch    *uint64
	wildcard bool
}

func parseComparator(s string) (comparator, error) {
	s = strings.TrimSpace(s)
	m := comparatorRe.FindStringSubmatch(s)
	if m == nil {
		return comparator{}, fmt.Errorf("semverrange: malformed comparator %q", s)
	}

	op := m[1]
	if m[2] == "*" {
		if op != "" || m[3] != "" {
			return comparator{}, fmt.Errorf("semverrange: malformed comparator %q", s)
		}
		return comparator{op: "*", wildcard: true}, nil
	}

	major, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return comparator{}, fmt.Errorf("semverrange: invalid major version in %q: %w", s, err)
	}
	c := comparator{op: op, major: major}

	// A wildcard segment turns the whole comparator into a wildcard
	// requirement; it can't follow an explicit operator, and nothing
	// numeric may follow it.
	if m[3] == "*" {
		if op != "" || m[4] != "" {
			return comparator{}, fmt.Errorf("semverrange: malformed comparator %q", s)
		}
		c.op = "*"
		return c, nil
	}
	if m[3] != "" {
		minor, err := strconv.ParseUint(m[3], 10, 64)
		if err != nil {
			return comparator{}, fmt.Errorf("semverrange: invalid minor version in %q: %w", s, err)
		}
		c.minor = &minor
	}
	if m[4] == "*" {
		if op != "" {
			return comparator{}, fmt.Errorf("semverrange: malformed comparator %q", s)
		}
		c.op = "*"
		return c, nil
	}
	if m[4] != "" {
		patch, err := strconv.ParseUint(m[4], 10, 64)
		if err != nil {
			return comparator{}, fmt.Errorf("semverrange: invalid patch version in %q: %w", s, err)
		}
		c.patch = &patch
	}
	return c, nil
}

func mustVersion(major, minor, patch uint64) *semver.Version {
	v, err := semver.NewVersion(fmt.Sprintf("%d.%d.%d", major, minor, patch))
	if err != nil {
		panic(err)
	}
	return v
}

func rangeExact(major uint64, minor, patch *uint64) Set {
	switch {
	case minor == nil && patch == nil:
		return rangeGreaterEq(major, nil, nil).Intersect(rangeLess(major+1, nil, nil))
	case minor != nil && patch == nil:
		return rangeGreaterEq(major, minor, nil).Intersect(rangeLess(major, ptr(*minor+1), nil))
	default:
		v := mustVersion(major, *minor, *patch)
		return Set{intervals: []interval{{low: v, lowIncl: true, high: v, highIncl: true}}}
	}
}

func rangeGreater(major uint64, minor, patch *uint64) Set {
	switch {
	case minor == nil && patch == nil:
		return rangeGreaterEq(major+1, nil, nil)
	case minor != nil && patch == nil:
		return rangeGreaterEq(major, ptr(*minor+1), nil)
	default:
		v := mustVersion(major, *minor, *patch)
		return Set{intervals: []interval{{low: v, lowIncl: false}}}
	}
}

func rangeGreaterEq(major uint64, minor, patch *uint64) Set {
	v := mustVersion(major, valueOr(minor, 0), valueOr(patch, 0))
	return Set{intervals: []interval{{low: v, lowIncl: true}}}
}

func rangeLess(major uint64, minor, patch *uint64) Set {
	v := mustVersion(major, valueOr(minor, 0), valueOr(patch, 0))
	return Set{intervals: []interval{{high: v, highIncl: false}}}
}

func rangeLessEq(major uint64, minor, patch *uint64) Set {
	switch {
	case minor == nil && patch == nil:
		return rangeLess(major+1, nil, nil)
	case minor != nil && patch == nil:
		return rangeLess(major, ptr(*minor+1), nil)
	default:
		v := mustVersion(major, *minor, *patch)
		return Set{intervals: []interval{{high: v, highIncl: true}}}
	}
}

func rangeTilde(major uint64, minor, patch *uint64) Set {
	switch {
	case minor == nil && patch == nil:
		return rangeExact(major, nil, nil)
	case minor != nil && patch == nil:
		return rangeExact(major, minor, nil)
	default:
		return rangeGreaterEq(major, minor, patch).Intersect(rangeLess(major, ptr(*minor+1), nil))
	}
}

func rangeCaret(major uint64, minor, patch *uint64) Set {
	switch {
	case minor != nil && patch != nil && major > 0:
		return rangeGreaterEq(major, minor, patch).Intersect(rangeLess(major+1, nil, nil))
	case major == 0 && minor != nil && *minor > 0 && patch != nil:
		return rangeGreaterEq(0, minor, patch).Intersect(rangeLess(0, ptr(*minor+1), nil))
	case major == 0 && minor != nil && *minor == 0 && patch != nil:
		return rangeExact(0, minor, patch)
	case minor != nil && patch == nil && (major > 0 || *minor > 0):
		zero := uint64(0)
		return rangeCaret(major, minor, &zero)
	case major == 0 && minor != nil && *minor == 0 && patch == nil:
		return rangeExact(0, minor, nil)
	case minor == nil && patch == nil:
		return rangeExact(major, nil, nil)
	default:
		return Empty()
	}
}

func rangeWildcard(major uint64, minor, patch *uint64) Set {
	if minor != nil {
		return rangeExact(major, minor, nil)
	}
	return rangeExact(major, nil, nil)
}

func ptr(v uint64) *uint64 { return &v }
func valueOr(v *uint64, fallback uint64) uint64 {
	if v == nil {
		return fallback
	}
	return *v
}

// For translates a semver requirement string into a Set. The
// requirement is a comma-separated list of comparators; the resulting
// set is the intersection of every comparator's range.
func For(requirement string) (Set, error) {
	requirement = strings.TrimSpace(requirement)
	if requirement == "" || requirement == "*" {
		return Full(), nil
	}

	result := Full()
	for _, part := range strings.Split(requirement, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := parseComparator(part)
		if err != nil {
			return Set{}, err
		}

		var rng Set
		switch {
		case c.wildcard:
			rng = Full()
		case c.op == "*":
			rng = rangeWildcard(c.major, c.minor, c.patch)
		case c.op == ">":
			rng = rangeGreater(c.major, c.minor, c.patch)
		case c.op == ">=":
			rng = rangeGreaterEq(c.major, c.minor, c.patch)
		case c.op == "<":
			rng = rangeLess(c.major, c.minor, c.patch)
		case c.op == "<=":
			rng = rangeLessEq(c.major, c.minor, c.patch)
		case c.op == "~":
			rng = rangeTilde(c.major, c.minor, c.patch)
		case c.op == "^":
			rng = rangeCaret(c.major, c.minor, c.patch)
		case c.op == "=":
			rng = rangeExact(c.major, c.minor, c.patch)
		default:
			// No operator defaults to caret compatibility, matching
			// Cargo-style requirement syntax.
			rng = rangeCaret(c.major, c.minor, c.patch)
		}

		result = result.Intersect(rng)
	}
	return result, nil
}
