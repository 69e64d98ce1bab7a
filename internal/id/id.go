// Package id implements creeper's package and artifact identifiers: a
// restricted ASCII string used both as a registry key and, via
// IndexedPath, as the sharding scheme for the on-disk registry layout.
package id

import (
	"fmt"
	"path/filepath"
)

// Id is a validated package or component identifier. The zero value is
// the empty string and is not valid; construct one with Parse.
type Id string

// Parse validates s as an Id: non-empty, starting with a lowercase
// letter, and containing only lowercase letters, digits, hyphens, and
// underscores.
func Parse(s string) (Id, error) {
	if s == "" {
		return "", fmt.Errorf("id: must not be empty")
	}
	first := s[0]
	if first < 'a' || first > 'z' {
		return "", fmt.Errorf("id: %q must start with a lowercase letter", s)
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		valid := (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
		if !valid {
			return "", fmt.Errorf("id: %q contains invalid character %q", s, c)
		}
	}
	return Id(s), nil
}

// MustParse is Parse, panicking on error. Intended for well-known
// built-in identifiers (id.MustParse("vanilla")), not user input.
func MustParse(s string) Id {
	i, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return i
}

func (i Id) String() string {
	return string(i)
}

// IndexedPath returns the relative path under which this Id is sharded
// in the registry's filesystem layout:
// "<c1c2>/<c3c4>/<id>", where c1..c4 are the first four lowercase
// letters of the Id, right-padded with 'x' when fewer than four are
// present. Digits, hyphens, and underscores don't count toward the
// four characters, so "a1-b" shards under "ab/xx".
func (i Id) IndexedPath() string {
	var head [4]byte
	n := 0
	for idx := 0; idx < len(i) && n < 4; idx++ {
		c := i[idx]
		if c >= 'a' && c <= 'z' {
			head[n] = c
			n++
		}
	}
	for ; n < 4; n++ {
		head[n] = 'x'
	}
	return filepath.Join(string(head[0:2]), string(head[2:4]), string(i))
}

// Well-known built-in identifiers used by the vanilla install pipeline.
var (
	Minecraft = MustParse("minecraft")
	Vanilla   = MustParse("vanilla")
	Forge     = MustParse("forge")
	NeoForge  = MustParse("neoforge")
	Fabric    = MustParse("fabric")
)

// Valid reports whether s would parse successfully, without allocating
// an Id.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}
