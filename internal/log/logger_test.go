package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newBufLogger(level slog.Level) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return New(h), &buf
}

func TestLevelsRenderThroughHandler(t *testing.T) {
	cases := []struct {
		level string
		emit  func(Logger)
	}{
		{"DEBUG", func(l Logger) { l.Debug("fingerprint found in local storage") }},
		{"INFO", func(l Logger) { l.Info("synchronizing version manifest") }},
		{"WARN", func(l Logger) { l.Warn("stored blob failed verification") }},
		{"ERROR", func(l Logger) { l.Error("resolution failed") }},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			logger, buf := newBufLogger(slog.LevelDebug)
			tc.emit(logger)
			if !strings.Contains(buf.String(), tc.level) {
				t.Errorf("expected level %s in output, got: %s", tc.level, buf.String())
			}
		})
	}
}

func TestHandlerLevelFilters(t *testing.T) {
	logger, buf := newBufLogger(slog.LevelWarn)

	logger.Debug("suppressed")
	logger.Info("suppressed")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Errorf("below-threshold records should be dropped, got: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn record should survive filtering, got: %s", out)
	}
}

func TestWithCarriesAttributes(t *testing.T) {
	logger, buf := newBufLogger(slog.LevelDebug)

	child := logger.With("blake3", "ab12").With("name", "minecraft.jar")
	child.Debug("stored")

	out := buf.String()
	for _, want := range []string{"blake3=ab12", "name=minecraft.jar", "stored"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}
}

func TestNoopIsInertAndSelfSimilar(t *testing.T) {
	logger := NewNoop()
	logger.Debug("x")
	logger.Info("x")
	logger.Warn("x")
	logger.Error("x")

	if _, ok := logger.With("key", "value").(noopLogger); !ok {
		t.Error("With on the noop logger should stay a noop logger")
	}
}

func TestDefaultRoundTrips(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	// Before SetDefault the default must be safe to use.
	Default().Info("pre-init record")

	logger, buf := newBufLogger(slog.LevelDebug)
	SetDefault(logger)
	Default().Info("post-init record")

	if !strings.Contains(buf.String(), "post-init record") {
		t.Errorf("Default should return the installed logger, got: %s", buf.String())
	}
}

func TestResolveLevelFlagsTakePrecedence(t *testing.T) {
	t.Setenv(EnvDebug, "")
	t.Setenv(EnvVerbose, "")
	t.Setenv(EnvQuiet, "")

	cases := []struct {
		quiet, verbose, debug bool
		want                  slog.Level
	}{
		{debug: true, want: slog.LevelDebug},
		{verbose: true, want: slog.LevelInfo},
		{quiet: true, want: slog.LevelError},
		{quiet: true, debug: true, want: slog.LevelDebug},
		{want: slog.LevelWarn},
	}
	for _, tc := range cases {
		if got := ResolveLevel(tc.quiet, tc.verbose, tc.debug); got != tc.want {
			t.Errorf("ResolveLevel(%v, %v, %v) = %s, want %s", tc.quiet, tc.verbose, tc.debug, got, tc.want)
		}
	}
}

func TestResolveLevelEnvFallback(t *testing.T) {
	cases := []struct {
		key   string
		value string
		want  slog.Level
	}{
		{EnvDebug, "1", slog.LevelDebug},
		{EnvVerbose, "true", slog.LevelInfo},
		{EnvQuiet, "yes", slog.LevelError},
		{EnvDebug, "on", slog.LevelDebug},
		{EnvDebug, "0", slog.LevelWarn},
		{EnvDebug, "random", slog.LevelWarn},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(EnvDebug, "")
			t.Setenv(EnvVerbose, "")
			t.Setenv(EnvQuiet, "")
			t.Setenv(tc.key, tc.value)
			if got := ResolveLevel(false, false, false); got != tc.want {
				t.Errorf("ResolveLevel with %s=%s = %s, want %s", tc.key, tc.value, got, tc.want)
			}
		})
	}
}

func TestResolveLevelFlagBeatsEnv(t *testing.T) {
	t.Setenv(EnvDebug, "1")
	if got := ResolveLevel(true, false, false); got != slog.LevelError {
		t.Errorf("quiet flag should override %s, got %s", EnvDebug, got)
	}
}

func TestDefaultIsSafeUnderConcurrency(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 200; j++ {
				Default().Debug("read")
			}
			done <- struct{}{}
		}()
		go func() {
			for j := 0; j < 200; j++ {
				SetDefault(NewNoop())
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 16; i++ {
		<-done
	}
}
