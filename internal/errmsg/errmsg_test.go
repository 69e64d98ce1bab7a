package errmsg

import (
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/creeperpm/creeper/internal/errs"
)

func TestFormat_NilError(t *testing.T) {
	require.Equal(t, "", Format(nil, nil))
}

func TestFormat_GenericError(t *testing.T) {
	err := errors.New("something went wrong")
	require.Equal(t, "something went wrong", Format(err, nil))
}

func TestFormat_CorruptionError(t *testing.T) {
	err := &errs.CorruptionError{Path: "/data/storage/ab/abcd", Expected: "abcd", Actual: "dcba"}
	result := Format(err, nil)

	for _, check := range []string{
		"corruption detected",
		"Possible causes:",
		"interrupted or truncated",
		"Suggestions:",
		"re-downloads corrupt artifacts",
	} {
		require.Contains(t, result, check)
	}
}

func TestFormat_NotFoundError_Package(t *testing.T) {
	err := &errs.NotFoundError{Kind: "package", Key: "fabric-api"}
	ctx := &ErrorContext{PackageID: "fabric-api"}
	result := Format(err, ctx)

	for _, check := range []string{
		"package not found: fabric-api",
		"Possible causes:",
		"Typo in the package",
		"Suggestions:",
		`"fabric-api"`,
	} {
		require.Contains(t, result, check)
	}
}

func TestFormat_NotFoundError_Version(t *testing.T) {
	err := &errs.NotFoundError{Kind: "version", Key: "1.21.9"}
	result := Format(err, nil)

	require.Contains(t, result, "version not found: 1.21.9")
	require.Contains(t, result, "game version manifest")
}

func TestFormat_UnsupportedError(t *testing.T) {
	err := &errs.UnsupportedError{What: "os.version rule", Detail: "10.0"}
	result := Format(err, nil)

	require.Contains(t, result, "unsupported: os.version rule (10.0)")
	require.Contains(t, result, "cannot proceed on this platform")
}

func TestFormat_ResolutionError(t *testing.T) {
	err := &errs.ResolutionError{Explanation: `no version of "fabric-api" satisfies the accumulated constraint`}
	result := Format(err, nil)

	require.Contains(t, result, "dependency resolution failed")
	require.Contains(t, result, "incompatible versions")
}

func TestFormat_ParseError(t *testing.T) {
	err := &errs.ParseError{Path: "creeper.toml", Err: errors.New("unknown field `foo`")}
	result := Format(err, nil)

	require.Contains(t, result, "failed to parse creeper.toml")
	require.Contains(t, result, "creeper.toml is malformed")
}

type timeoutErr struct{ timeout bool }

func (e *timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (e *timeoutErr) Timeout() bool   { return e.timeout }
func (e *timeoutErr) Temporary() bool { return false }

func TestFormat_NetworkError_Timeout(t *testing.T) {
	var netErr net.Error = &timeoutErr{timeout: true}
	result := Format(netErr, nil)

	require.Contains(t, result, "Request timed out")
	require.Contains(t, result, "Check your internet connection")
}

func TestFormat_GenericNetworkError(t *testing.T) {
	err := errors.New("dial tcp 1.2.3.4:443: connection refused")
	result := Format(err, nil)

	require.True(t, strings.Contains(result, "Network connectivity issue"))
}

func TestFormat_PermissionError(t *testing.T) {
	err := errors.New("open /data/storage-index.db: permission denied")
	result := Format(err, nil)

	require.Contains(t, result, "CREEPER_HOME")
}
