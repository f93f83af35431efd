package trailpack_test

import (
	"testing"

	"github.com/trailpack/trailpack"
)

func TestSanitizeResourceName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Dataset!", "my_dataset"},
		{"already_valid", "already_valid"},
		{"  Spaced  Out  ", "spaced_out"},
		{"Ünïcode Näme", "ncode_nme"},
		{"UPPER-case.v2", "upper-case.v2"},
		{"___", ""},
		{"!!!", ""},
		{"tabs\tbecome_underscores", "tabs_become_underscores"},
	}
	for _, tc := range tests {
		if got := trailpack.SanitizeResourceName(tc.in); got != tc.want {
			t.Errorf("SanitizeResourceName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateAndSanitizeResourceName(t *testing.T) {
	ok, result, suggestion := trailpack.ValidateAndSanitizeResourceName("My Dataset!", false)
	if ok || result != "My Dataset!" || suggestion != "my_dataset" {
		t.Fatalf("got (%v, %q, %q), want (false, original, my_dataset)", ok, result, suggestion)
	}

	ok, result, suggestion = trailpack.ValidateAndSanitizeResourceName("My Dataset!", true)
	if ok || result != "my_dataset" || suggestion != "my_dataset" {
		t.Fatalf("autofix got (%v, %q, %q)", ok, result, suggestion)
	}

	ok, result, suggestion = trailpack.ValidateAndSanitizeResourceName("my_dataset", false)
	if !ok || result != "my_dataset" || suggestion != "" {
		t.Fatalf("valid name got (%v, %q, %q)", ok, result, suggestion)
	}
}

func TestValidPackageName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"sensor-readings", true},
		{"data.v2", true},
		{"My Dataset", false},
		{".hidden", false},
		{"trailing.", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := trailpack.ValidPackageName(tc.name); got != tc.want {
			t.Errorf("ValidPackageName(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
