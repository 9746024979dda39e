package core

import (
	"testing"
	"time"
)

func TestISOWeekday(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{name: "monday", date: time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC), want: 0},
		{name: "wednesday", date: time.Date(2021, time.March, 3, 0, 0, 0, 0, time.UTC), want: 2},
		{name: "saturday", date: time.Date(2021, time.March, 6, 0, 0, 0, 0, time.UTC), want: 5},
		{name: "sunday", date: time.Date(2021, time.March, 7, 0, 0, 0, 0, time.UTC), want: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ISOWeekday(tt.date); got != tt.want {
				t.Errorf("ISOWeekday() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseClassTime(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantHour int
		wantMin  int
		wantErr  bool
	}{
		{name: "with seconds", in: "14:30:00", wantHour: 14, wantMin: 30},
		{name: "without seconds", in: "09:05", wantHour: 9, wantMin: 5},
		{name: "midnight", in: "00:00:00", wantHour: 0, wantMin: 0},
		{name: "empty", in: "", wantErr: true},
		{name: "no colon", in: "1430", wantErr: true},
		{name: "out of range", in: "25:00", wantErr: true},
		{name: "garbage", in: "aa:bb", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, min, err := ParseClassTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClassTime() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (hour != tt.wantHour || min != tt.wantMin) {
				t.Errorf("ParseClassTime() = %v:%v, want %v:%v", hour, min, tt.wantHour, tt.wantMin)
			}
		})
	}
}

func TestEndOfClassDate(t *testing.T) {
	end, err := EndOfClassDate("2021-03-01")
	if err != nil {
		t.Fatalf("EndOfClassDate() failed: %v", err)
	}
	want := time.Date(2021, time.March, 1, 23, 59, 59, 0, time.UTC)
	if !end.Equal(want) {
		t.Errorf("EndOfClassDate() = %v, want %v", end, want)
	}
	if _, err = EndOfClassDate("01-03-2021"); err == nil {
		t.Error("EndOfClassDate() expected error on malformed date")
	}
}

func TestMinuteOfDay(t *testing.T) {
	if got := MinuteOfDay(14, 45); got != 885 {
		t.Errorf("MinuteOfDay() = %v, want 885", got)
	}
}
