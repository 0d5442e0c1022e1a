package natsadapter

import (
	"strings"
	"testing"

	"github.com/samirrijal/mtlmap/internal/core/domain"
)

func TestDatasetSubject(t *testing.T) {
	for _, l := range domain.Layers {
		s := DatasetSubject(l)
		if !strings.HasPrefix(s, DatasetSubjectPrefix) {
			t.Errorf("subject %q missing prefix", s)
		}
		if got := strings.TrimPrefix(s, DatasetSubjectPrefix); got != string(l) {
			t.Errorf("subject %q does not end with layer %q", s, l)
		}
	}
}
