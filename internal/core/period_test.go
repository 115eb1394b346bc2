package core

import "testing"

func TestPeriodOf(t *testing.T) {
	if got := PeriodOf(NewDate(2024, 3, 1)); got != "2024-03" {
		t.Errorf("PeriodOf(2024-03-01) = %s, want 2024-03", got)
	}
	if got := PeriodOf(NewDate(2024, 12, 31)); got != "2024-12" {
		t.Errorf("PeriodOf(2024-12-31) = %s, want 2024-12", got)
	}
}

func TestPeriod_Contains(t *testing.T) {
	tests := []struct {
		name   string
		period Period
		date   Date
		want   bool
	}{
		{name: "inside month", period: "2024-03", date: NewDate(2024, 3, 15), want: true},
		{name: "other month", period: "2024-03", date: NewDate(2024, 4, 1), want: false},
		{name: "other year", period: "2024-03", date: NewDate(2023, 3, 15), want: false},
		{name: "always matches everything", period: "", date: NewDate(1999, 1, 1), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.period.Contains(tt.date); got != tt.want {
				t.Errorf("Period(%q).Contains(%v) = %v, want %v", tt.period, tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestPeriod_Validate(t *testing.T) {
	for _, p := range []Period{"", "2024-03", "1999-12"} {
		if err := p.Validate(); err != nil {
			t.Errorf("Period(%q).Validate() = %v, want nil", p, err)
		}
	}
	for _, p := range []Period{"2024", "2024-13", "03-2024", "garbage"} {
		if err := p.Validate(); err == nil {
			t.Errorf("Period(%q).Validate() = nil, want error", p)
		}
	}
}
