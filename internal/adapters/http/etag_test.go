package http

import "testing"

func TestETagMatches(t *testing.T) {
	tag := weakETag([]byte(`{"type":"FeatureCollection","features":[]}`))

	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{tag, true},
		{"*", true},
		{`W/"other-1", ` + tag, true},
		{tag[2:], true},
		{`W/"other-1"`, false},
	}
	for _, tt := range tests {
		if got := etagMatches(tt.header, tag); got != tt.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestWeakETag_ChangesWithBody(t *testing.T) {
	if weakETag([]byte("a")) == weakETag([]byte("b")) {
		t.Error("expected distinct tags for distinct bodies")
	}
}
