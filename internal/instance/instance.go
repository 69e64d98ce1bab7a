// Package instance loads and validates creeper.toml, the file that
// roots a Minecraft instance directory and carries the handful of
// settings (display name, user credentials, Java invocation, window
// size) that a separate launch builder consumes. Parsing this file is
// in scope here; building a launch command from it is not.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/creeperpm/creeper/internal/errs"
)

// FileName is the instance root marker file.
const FileName = "creeper.toml"

// UserType enumerates the supported authentication schemes. Only "msa"
// (Microsoft account) exists today.
type UserType string

// MSA is the only currently supported UserType.
const MSA UserType = "msa"

// User is the authenticated account a launched instance runs as.
// Consumed only by a separate launch builder; modeled here so the
// file format parses.
type User struct {
	Name  string   `toml:"name"`
	UUID  string   `toml:"uuid"`
	Token string   `toml:"token"`
	Type  UserType `toml:"type"`
}

// Java configures the JVM invocation: the executable, heap size, and
// any additional flags. VMOptArgs toggles a fixed set of G1GC tuning
// flags, not a user-supplied list; it defaults to true when
// creeper.toml omits it.
type Java struct {
	Path      string   `toml:"path"`
	Memory    int      `toml:"memory"`
	VMOptArgs *bool    `toml:"vm-opt-args,omitempty"`
	Flags     []string `toml:"flags,omitempty"`
}

// VMOptArgsEnabled reports whether JVM optimization flags should be
// added, honoring creeper.toml's vm-opt-args when present and
// defaulting to true otherwise.
func (j Java) VMOptArgsEnabled() bool {
	if j.VMOptArgs == nil {
		return true
	}
	return *j.VMOptArgs
}

// Minecraft holds the handful of game-side settings creeper.toml
// carries: additional command-line flags and the initial window size.
// Width and Height default to Mojang's own launcher defaults (854x480)
// when the field is absent.
type Minecraft struct {
	GameFlags []string `toml:"game-flags,omitempty"`
	Width     int      `toml:"width,omitempty"`
	Height    int      `toml:"height,omitempty"`
}

const (
	defaultWidth  = 854
	defaultHeight = 480
)

// Instance is the decoded, validated contents of a creeper.toml, plus
// the directory it was loaded from.
type Instance struct {
	Dir       string    `toml:"-"`
	Name      string    `toml:"name"`
	User      User      `toml:"user"`
	Java      Java      `toml:"java"`
	Minecraft Minecraft `toml:"minecraft"`
}

// Load reads and validates dir/creeper.toml. Unknown top-level or
// nested fields are rejected rather than ignored. A missing file is a
// *errs.NotFoundError; a malformed one is a *errs.ParseError.
func Load(dir string) (*Instance, error) {
	path := filepath.Join(dir, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &errs.NotFoundError{Kind: "instance", Key: path}
		}
		return nil, &errs.IOError{Op: "read", Path: path, Err: err}
	}

	var inst Instance
	md, err := toml.Decode(string(data), &inst)
	if err != nil {
		return nil, &errs.ParseError{Path: path, Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, &errs.ParseError{Path: path, Err: fmt.Errorf("unknown field %q", undecoded[0].String())}
	}
	if inst.User.Type != MSA {
		return nil, &errs.ParseError{Path: path, Err: fmt.Errorf("unsupported user type %q", inst.User.Type)}
	}

	if inst.Minecraft.Width == 0 {
		inst.Minecraft.Width = defaultWidth
	}
	if inst.Minecraft.Height == 0 {
		inst.Minecraft.Height = defaultHeight
	}

	inst.Dir = dir
	return &inst, nil
}

// FindDir walks up from start looking for a directory containing
// creeper.toml, returning the first one found. It returns "", false if
// none is found before reaching the filesystem root.
func FindDir(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
