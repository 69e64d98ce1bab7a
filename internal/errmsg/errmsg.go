// Package errmsg adds actionable suggestions to errors surfaced at the CLI.
package errmsg

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/creeperpm/creeper/internal/errs"
)

// ErrorContext provides additional context for error formatting, such as
// the package id the failing operation concerned.
type ErrorContext struct {
	PackageID string
}

// Format returns a formatted error message with possible causes and
// suggestions. ctx is optional - pass nil for generic formatting.
func Format(err error, ctx *ErrorContext) string {
	if err == nil {
		return ""
	}

	var corruption *errs.CorruptionError
	if errors.As(err, &corruption) {
		return formatCorruptionError(corruption, ctx)
	}

	var notFound *errs.NotFoundError
	if errors.As(err, &notFound) {
		return formatNotFoundError(notFound, ctx)
	}

	var unsupported *errs.UnsupportedError
	if errors.As(err, &unsupported) {
		return formatUnsupportedError(unsupported, ctx)
	}

	var resolution *errs.ResolutionError
	if errors.As(err, &resolution) {
		return formatResolutionError(resolution, ctx)
	}

	var parse *errs.ParseError
	if errors.As(err, &parse) {
		return formatParseError(parse, ctx)
	}

	errMsg := err.Error()

	var netErr net.Error
	if errors.As(err, &netErr) {
		return formatNetworkError(netErr, ctx)
	}
	if isNetworkError(errMsg) {
		return formatGenericNetworkError(errMsg, ctx)
	}
	if isPermissionError(errMsg) {
		return formatPermissionError(errMsg, ctx)
	}

	return errMsg
}

func formatCorruptionError(err *errs.CorruptionError, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - The download was interrupted or truncated\n")
	sb.WriteString("  - The upstream artifact changed since the registry entry was written\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Re-run the command; creeper re-downloads corrupt artifacts automatically\n")
	sb.WriteString("  - If the failure repeats, the registry package entry may need an updated checksum\n")

	return sb.String()
}

func formatNotFoundError(err *errs.NotFoundError, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	switch err.Kind {
	case "version":
		sb.WriteString("  - The requested version does not exist in the registry\n")
		sb.WriteString("  - The game version manifest does not list this version\n")
	default:
		sb.WriteString("  - Typo in the package or artifact identifier\n")
		sb.WriteString("  - The package has not been published to the registry\n")
	}

	sb.WriteString("\nSuggestions:\n")
	if ctx != nil && ctx.PackageID != "" {
		sb.WriteString(fmt.Sprintf("  - Check the spelling of %q\n", ctx.PackageID))
	} else {
		sb.WriteString("  - Check the spelling of the package id\n")
	}
	sb.WriteString("  - List available versions for the package and retry with one of them\n")

	return sb.String()
}

func formatUnsupportedError(err *errs.UnsupportedError, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - The package requires a platform or feature creeper does not implement\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - This install cannot proceed on this platform; choose a different package or version\n")

	return sb.String()
}

func formatResolutionError(err *errs.ResolutionError, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Two requested packages require incompatible versions of the same dependency\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Loosen a version requirement on one of the conflicting packages\n")
	sb.WriteString("  - Remove one of the conflicting packages from the instance\n")

	return sb.String()
}

func formatParseError(err *errs.ParseError, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString(fmt.Sprintf("  - %s is malformed or uses an unrecognised field\n", err.Path))

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString(fmt.Sprintf("  - Validate %s against the expected schema\n", err.Path))

	return sb.String()
}

func formatNetworkError(err net.Error, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	if err.Timeout() {
		sb.WriteString("  - Request timed out\n")
		sb.WriteString("  - Slow or unstable network connection\n")
	} else {
		sb.WriteString("  - Network connectivity issue\n")
		sb.WriteString("  - DNS resolution failure\n")
	}
	sb.WriteString("  - Firewall or proxy blocking the connection\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Try again in a few minutes\n")

	return sb.String()
}

func formatGenericNetworkError(errMsg string, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Network connectivity issue\n")
	sb.WriteString("  - DNS resolution failure\n")
	sb.WriteString("  - Service temporarily unavailable\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Try again in a few minutes\n")

	return sb.String()
}

func formatPermissionError(errMsg string, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Insufficient permissions on $CREEPER_HOME directory\n")
	sb.WriteString("  - File or directory owned by a different user\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check permissions on the creeper data directory\n")
	sb.WriteString("  - Ensure you own the creeper data and cache directories\n")

	return sb.String()
}

func isNetworkError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "network is unreachable") ||
		strings.Contains(lower, "dial tcp") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "i/o timeout")
}

func isPermissionError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "access denied") ||
		strings.Contains(lower, "operation not permitted")
}
