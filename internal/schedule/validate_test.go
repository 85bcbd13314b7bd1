package schedule

import (
	"slices"
	"testing"
)

func testDay(slots ...Slot) Day {
	return Day{
		ID:        "day-1",
		BeginTime: "09:00",
		EndTime:   "18:00",
		Slots:     slots,
	}
}

func testRooms() []Room {
	return []Room{
		{ID: "room-1", Name: "Main Hall", Capacity: 300, IsSessionRoom: true},
		{ID: "room-2", Name: "Lounge", Capacity: 80, IsSessionRoom: false},
	}
}

func testSlotTypes() []SlotType {
	return []SlotType{
		{ID: "st-session", Label: "Session", IsSession: true},
		{ID: "st-break", Label: "Break", IsSession: false},
	}
}

func testSessionTypes() []SessionType {
	return []SessionType{
		{ID: "talk-40", Name: "Regular Talk", Duration: 40, MaxSpeakers: 3},
	}
}

func validSessionSlot() Slot {
	return Slot{
		ID:            "slot-new",
		StartTime:     "10:00",
		EndTime:       "10:40",
		Duration:      40,
		RoomID:        "room-1",
		SlotTypeID:    "st-session",
		SessionTypeID: "talk-40",
	}
}

func TestValidate_AcceptsWellFormedSlot(t *testing.T) {
	codes := Validate(validSessionSlot(), testDay(), testSlotTypes(), testSessionTypes(), testRooms())
	if len(codes) != 0 {
		t.Fatalf("expected no error codes, got %v", codes)
	}
}

func TestValidate_ReportsStructuralProblems(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Slot)
		day    Day
		want   []ErrorCode
	}{
		{
			name:   "end before start",
			mutate: func(s *Slot) { s.StartTime = "11:00"; s.EndTime = "10:00"; s.Duration = 40 },
			day:    testDay(),
			want:   []ErrorCode{ErrCodeStartAfterEnd, ErrCodeWrongDuration},
		},
		{
			name:   "malformed start clock",
			mutate: func(s *Slot) { s.StartTime = "banana" },
			day:    testDay(),
			want:   []ErrorCode{ErrCodeStartAfterEnd, ErrCodeBeforeDayBegin, ErrCodeWrongDuration},
		},
		{
			name:   "negative duration",
			mutate: func(s *Slot) { s.Duration = -5 },
			day:    testDay(),
			want:   []ErrorCode{ErrCodeWrongDuration, ErrCodeWrongDurationSession},
		},
		{
			name:   "duration over ceiling",
			mutate: func(s *Slot) { s.Duration = 1001 },
			day:    testDay(),
			want:   []ErrorCode{ErrCodeWrongDuration, ErrCodeWrongDurationSession},
		},
		{
			name:   "before day opening",
			mutate: func(s *Slot) { s.StartTime = "08:00"; s.EndTime = "08:40" },
			day:    testDay(),
			want:   []ErrorCode{ErrCodeBeforeDayBegin},
		},
		{
			name:   "after day closing",
			mutate: func(s *Slot) { s.StartTime = "17:50"; s.EndTime = "18:30" },
			day:    testDay(),
			want:   []ErrorCode{ErrCodeAfterDayEnd},
		},
		{
			name:   "unknown room",
			mutate: func(s *Slot) { s.RoomID = "room-missing" },
			day:    testDay(),
			want:   []ErrorCode{ErrCodeUnexistingRoom},
		},
		{
			name:   "room disabled for the day",
			mutate: func(s *Slot) {},
			day: func() Day {
				d := testDay()
				d.DisabledRoomIDs = []string{"room-1"}
				return d
			}(),
			want: []ErrorCode{ErrCodeRoomDisabled},
		},
		{
			name:   "unknown slot type",
			mutate: func(s *Slot) { s.SlotTypeID = "st-missing" },
			day:    testDay(),
			want:   []ErrorCode{ErrCodeWrongSlotType},
		},
		{
			name:   "session slot in non-session room",
			mutate: func(s *Slot) { s.RoomID = "room-2" },
			day:    testDay(),
			want:   []ErrorCode{ErrCodeWrongRoomType},
		},
		{
			name:   "break slot in session room",
			mutate: func(s *Slot) { s.SlotTypeID = "st-break"; s.SessionTypeID = "" },
			day:    testDay(),
			want:   []ErrorCode{ErrCodeWrongRoomType},
		},
		{
			name:   "unknown session type",
			mutate: func(s *Slot) { s.SessionTypeID = "talk-missing" },
			day:    testDay(),
			want:   []ErrorCode{ErrCodeWrongSessionType},
		},
		{
			name:   "duration differs from session type",
			mutate: func(s *Slot) { s.EndTime = "11:00"; s.Duration = 60 },
			day:    testDay(),
			want:   []ErrorCode{ErrCodeWrongDurationSession},
		},
		{
			name:   "overlapping existing slot",
			mutate: func(s *Slot) {},
			day: testDay(Slot{
				ID:         "slot-existing",
				StartTime:  "09:30",
				EndTime:    "10:10",
				Duration:   40,
				RoomID:     "room-1",
				SlotTypeID: "st-break",
			}),
			want: []ErrorCode{ErrCodeOverlapSlot},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := validSessionSlot()
			tc.mutate(&candidate)

			got := Validate(candidate, tc.day, testSlotTypes(), testSessionTypes(), testRooms())

			slices.Sort(got)
			slices.Sort(tc.want)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("expected codes %v, got %v", tc.want, got)
			}
		})
	}
}

func TestValidate_EditDoesNotCollideWithItself(t *testing.T) {
	existing := validSessionSlot()
	existing.ID = "slot-1"

	edited := existing
	edited.StartTime = "10:10"
	edited.EndTime = "10:50"

	codes := Validate(edited, testDay(existing), testSlotTypes(), testSessionTypes(), testRooms())
	if len(codes) != 0 {
		t.Fatalf("expected edit of the same slot to validate cleanly, got %v", codes)
	}
}

func TestValidate_BreakSlotSkipsSessionTypeChecks(t *testing.T) {
	candidate := Slot{
		ID:         "slot-break",
		StartTime:  "12:00",
		EndTime:    "13:00",
		Duration:   60,
		RoomID:     "room-2",
		SlotTypeID: "st-break",
	}
	codes := Validate(candidate, testDay(), testSlotTypes(), testSessionTypes(), testRooms())
	if len(codes) != 0 {
		t.Fatalf("expected break slot to validate without a session type, got %v", codes)
	}
}

func TestClockMinutes(t *testing.T) {
	cases := []struct {
		clock   string
		want    int
		wantErr bool
	}{
		{clock: "00:00", want: 0},
		{clock: "09:30", want: 570},
		{clock: "23:59", want: 1439},
		{clock: "24:00", wantErr: true},
		{clock: "12:60", wantErr: true},
		{clock: "noon", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ClockMinutes(tc.clock)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ClockMinutes(%q): expected error", tc.clock)
			}
			continue
		}
		if err != nil {
			t.Errorf("ClockMinutes(%q): unexpected error: %v", tc.clock, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ClockMinutes(%q) = %d, want %d", tc.clock, got, tc.want)
		}
	}
}

func TestMinutesClock_RoundTrips(t *testing.T) {
	for _, minutes := range []int{0, 570, 599, 1439} {
		clock := MinutesClock(minutes)
		back, err := ClockMinutes(clock)
		if err != nil {
			t.Fatalf("ClockMinutes(%q) returned error: %v", clock, err)
		}
		if back != minutes {
			t.Fatalf("round trip of %d minutes produced %d", minutes, back)
		}
	}
}
