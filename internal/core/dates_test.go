package core

import "testing"

func TestFormatDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-01-15T10:30:00.000Z", "Jan 15, 2024"},
		{"2024-01-15", "Jan 15, 2024"},
		{"2024-12-31T23:59:59Z", "Dec 31, 2024"},
		{"2024-07-04T02:00:00+05:00", "Jul 3, 2024"}, // converted to UTC
		{"2024-07-04T12:00:00", "Jul 4, 2024"},
		{"2024-06", "Jun 1, 2024"},
		{" 2024-03-05 ", "Mar 5, 2024"},
		{"", NoDateDisplay},
		{"   ", NoDateDisplay},
		{"invalid-date", InvalidDateDisplay},
		{"2024-02-30", InvalidDateDisplay},
		{"15/01/2024", InvalidDateDisplay},
	}
	for _, tc := range cases {
		if got := FormatDate(tc.in); got != tc.want {
			t.Fatalf("FormatDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if NoDateDisplay == InvalidDateDisplay {
		t.Fatalf("empty and invalid sentinels must differ")
	}
}
