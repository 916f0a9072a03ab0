package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func tr(t *testing.T, start, end string) TimeRange {
	t.Helper()

	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		t.Fatalf("bad start %q: %v", start, err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		t.Fatalf("bad end %q: %v", end, err)
	}
	return TimeRange{Start: s, End: e}
}

func TestTimeRangeOverlaps(t *testing.T) {
	base := tr(t, "2026-03-10T10:00:00Z", "2026-03-10T11:00:00Z")

	tests := []struct {
		name  string
		other TimeRange
		want  bool
	}{
		{"identical", tr(t, "2026-03-10T10:00:00Z", "2026-03-10T11:00:00Z"), true},
		{"partial overlap at start", tr(t, "2026-03-10T09:30:00Z", "2026-03-10T10:30:00Z"), true},
		{"partial overlap at end", tr(t, "2026-03-10T10:30:00Z", "2026-03-10T11:30:00Z"), true},
		{"fully contained", tr(t, "2026-03-10T10:15:00Z", "2026-03-10T10:45:00Z"), true},
		{"fully containing", tr(t, "2026-03-10T09:00:00Z", "2026-03-10T12:00:00Z"), true},
		{"adjacent before", tr(t, "2026-03-10T09:00:00Z", "2026-03-10T10:00:00Z"), false},
		{"adjacent after", tr(t, "2026-03-10T11:00:00Z", "2026-03-10T12:00:00Z"), false},
		{"disjoint before", tr(t, "2026-03-10T07:00:00Z", "2026-03-10T08:00:00Z"), false},
		{"disjoint after", tr(t, "2026-03-10T13:00:00Z", "2026-03-10T14:00:00Z"), false},
		{"one minute overlap", tr(t, "2026-03-10T10:59:00Z", "2026-03-10T12:00:00Z"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			// Overlap is symmetric
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestTimeRangeIsValid(t *testing.T) {
	assert.True(t, tr(t, "2026-03-10T10:00:00Z", "2026-03-10T10:01:00Z").IsValid())
	assert.False(t, tr(t, "2026-03-10T10:00:00Z", "2026-03-10T10:00:00Z").IsValid())
	assert.False(t, tr(t, "2026-03-10T11:00:00Z", "2026-03-10T10:00:00Z").IsValid())
}

func TestTimeRangeDuration(t *testing.T) {
	r := tr(t, "2026-03-10T09:00:00Z", "2026-03-10T10:30:00Z")
	assert.Equal(t, 90*time.Minute, r.Duration())
}
