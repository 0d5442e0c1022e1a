package valkey

import "testing"

func TestOperation(t *testing.T) {
	tests := map[string]string{
		"mtlmap:land_use:box:1,2,3,4": "land_use",
		"mtlmap:zone_codes:ANJ":       "zone_codes",
		"plain":                       "plain",
	}
	for key, want := range tests {
		if got := operation(key); got != want {
			t.Errorf("operation(%q) = %q, want %q", key, got, want)
		}
	}
}
