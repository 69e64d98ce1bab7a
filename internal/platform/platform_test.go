package platform

import (
	"errors"
	"testing"

	"github.com/creeperpm/creeper/internal/errs"
)

func TestOSMatches_NilAlwaysMatches(t *testing.T) {
	if !osMatches(nil) {
		t.Fatal("nil OSMatch should always match")
	}
}

func TestOSMatches_Name(t *testing.T) {
	current := Name()
	if current == "" {
		t.Skip("unrecognized GOOS for this test")
	}
	if !osMatches(&OSMatch{Name: current}) {
		t.Fatalf("expected match for current OS name %q", current)
	}
	if osMatches(&OSMatch{Name: "not-" + current}) {
		t.Fatal("expected no match for a different OS name")
	}
}

func TestOSMatches_Arch(t *testing.T) {
	current := Arch()
	if current == "" {
		t.Skip("unrecognized GOARCH for this test")
	}
	if !osMatches(&OSMatch{Arch: current}) {
		t.Fatalf("expected match for current arch %q", current)
	}
	if osMatches(&OSMatch{Arch: "not-" + current}) {
		t.Fatal("expected no match for a different arch")
	}
}

func TestAllowed_EmptyRulesAlwaysAllowed(t *testing.T) {
	allowed, err := Allowed(nil)
	if err != nil || !allowed {
		t.Fatalf("expected (true, nil), got (%v, %v)", allowed, err)
	}
}

func TestAllowed_DisallowWithoutOSQualifierRejectsAll(t *testing.T) {
	allowed, err := Allowed([]Rule{{Action: Disallow}})
	if err != nil || allowed {
		t.Fatalf("expected (false, nil), got (%v, %v)", allowed, err)
	}
}

func TestAllowed_OSQualifiedDisallowOnlyAppliesOnMatch(t *testing.T) {
	current := Name()
	if current == "" {
		t.Skip("unrecognized GOOS for this test")
	}
	allowed, err := Allowed([]Rule{
		{Action: Allow},
		{Action: Disallow, OS: &OSMatch{Name: "not-" + current}},
	})
	if err != nil || !allowed {
		t.Fatalf("expected allow to survive a disallow for a different OS, got (%v, %v)", allowed, err)
	}
}

func TestAllowed_EveryRuleMustApply(t *testing.T) {
	current := Name()
	if current == "" {
		t.Skip("unrecognized GOOS for this test")
	}
	allowed, err := Allowed([]Rule{
		{Action: Allow},
		{Action: Disallow, OS: &OSMatch{Name: current}},
	})
	if err != nil || allowed {
		t.Fatalf("expected the matching disallow to exclude the library, got (%v, %v)", allowed, err)
	}
}

func TestAllowed_OrderDoesNotMatter(t *testing.T) {
	current := Name()
	if current == "" {
		t.Skip("unrecognized GOOS for this test")
	}
	// A naive "last matching rule wins" evaluator would let the
	// unqualified Allow rule override the preceding Disallow; the
	// all-rules-must-apply semantics exclude the library regardless
	// of rule order.
	allowed, err := Allowed([]Rule{
		{Action: Disallow, OS: &OSMatch{Name: current}},
		{Action: Allow},
	})
	if err != nil || allowed {
		t.Fatalf("expected the disallow to exclude the library regardless of order, got (%v, %v)", allowed, err)
	}
}

func TestAllowed_FeatureRuleIsUnsupported(t *testing.T) {
	_, err := Allowed([]Rule{{Action: Allow, Features: map[string]bool{"is_demo_user": true}}})
	var ue *errs.UnsupportedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *errs.UnsupportedError, got %v", err)
	}
}

func TestAllowed_OSVersionRuleIsUnsupported(t *testing.T) {
	_, err := Allowed([]Rule{{Action: Allow, OS: &OSMatch{Version: "^10\\."}}})
	var ue *errs.UnsupportedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *errs.UnsupportedError, got %v", err)
	}
}

func TestMatchesNativesClassifier_KnownClassifiers(t *testing.T) {
	current := Name()
	if current == "" {
		t.Skip("unrecognized GOOS for this test")
	}
	cases := map[string]string{"natives-linux": "linux", "natives-windows": "windows", "natives-macos": "macos"}
	for classifier, os := range cases {
		matches, err := MatchesNativesClassifier(classifier)
		if err != nil {
			t.Fatalf("MatchesNativesClassifier(%q) returned error: %v", classifier, err)
		}
		if matches != (os == current) {
			t.Fatalf("MatchesNativesClassifier(%q) = %v, want %v", classifier, matches, os == current)
		}
	}
}

func TestMatchesNativesClassifier_UnknownIsUnsupported(t *testing.T) {
	_, err := MatchesNativesClassifier("natives-solaris")
	var ue *errs.UnsupportedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *errs.UnsupportedError, got %v", err)
	}
}

func TestName_RecognizedValues(t *testing.T) {
	switch Name() {
	case "windows", "macos", "linux", "":
	default:
		t.Fatalf("Name() returned unrecognized value %q", Name())
	}
}

func TestArch_RecognizedValues(t *testing.T) {
	switch Arch() {
	case "x86", "":
	default:
		t.Fatalf("Arch() returned unrecognized value %q", Arch())
	}
}
