package alert

import (
	"testing"
	"time"
)

func TestSeverity_Rank_Ordering(t *testing.T) {
	t.Parallel()

	ordered := []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Rank() >= ordered[i].Rank() {
			t.Errorf("%s should rank below %s", ordered[i-1], ordered[i])
		}
	}
	if Severity("BOGUS").Rank() >= SeverityLow.Rank() {
		t.Error("unknown severity should rank below LOW")
	}
}

func TestAlert_Visible(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name    string
		snoozed time.Time
		at      time.Time
		want    bool
	}{
		{"never snoozed", time.Time{}, now, true},
		{"snooze active", now.Add(time.Minute), now, false},
		{"snooze expired", now.Add(-time.Second), now, true},
		{"exactly at boundary", now, now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			al := &Alert{ID: "TX-1", SnoozedUntil: tt.snoozed}
			if got := al.Visible(tt.at); got != tt.want {
				t.Errorf("Visible = %v, want %v", got, tt.want)
			}
		})
	}
}
