package allocation

import "testing"

func TestStatusEligible(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusSubmitted, false},
		{StatusAccepted, true},
		{StatusRejected, false},
		{StatusSpeakerConfirmed, true},
		{StatusScheduled, false},
		{StatusProgrammed, false},
	}
	for _, tc := range cases {
		if got := tc.status.Eligible(); got != tc.want {
			t.Errorf("%s.Eligible() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestStatusAdvanced(t *testing.T) {
	cases := []struct {
		status  Status
		want    Status
		applies bool
	}{
		{StatusAccepted, StatusScheduled, true},
		{StatusSpeakerConfirmed, StatusProgrammed, true},
		{StatusSubmitted, StatusSubmitted, false},
		{StatusRejected, StatusRejected, false},
		{StatusScheduled, StatusScheduled, false},
		{StatusProgrammed, StatusProgrammed, false},
	}
	for _, tc := range cases {
		got, applies := tc.status.Advanced()
		if got != tc.want || applies != tc.applies {
			t.Errorf("%s.Advanced() = (%s, %v), want (%s, %v)", tc.status, got, applies, tc.want, tc.applies)
		}
	}
}

func TestStatusRolledBack(t *testing.T) {
	cases := []struct {
		status  Status
		want    Status
		applies bool
	}{
		{StatusScheduled, StatusAccepted, true},
		{StatusProgrammed, StatusSpeakerConfirmed, true},
		{StatusAccepted, StatusAccepted, false},
		{StatusSpeakerConfirmed, StatusSpeakerConfirmed, false},
		{StatusSubmitted, StatusSubmitted, false},
	}
	for _, tc := range cases {
		got, applies := tc.status.RolledBack()
		if got != tc.want || applies != tc.applies {
			t.Errorf("%s.RolledBack() = (%s, %v), want (%s, %v)", tc.status, got, applies, tc.want, tc.applies)
		}
	}
}

func TestStatusRoundTrip(t *testing.T) {
	for _, status := range []Status{StatusAccepted, StatusSpeakerConfirmed} {
		advanced, ok := status.Advanced()
		if !ok {
			t.Fatalf("%s should advance", status)
		}
		back, ok := advanced.RolledBack()
		if !ok || back != status {
			t.Fatalf("%s advanced to %s but rolled back to %s", status, advanced, back)
		}
	}
}
