package ui

import (
	"testing"
	"time"
)

func TestDateInputValue(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.Local)

	tests := []struct {
		name    string
		fields  [dateFields]string
		want    time.Time
		wantErr bool
	}{
		{"full", [dateFields]string{"2027", "01", "02", "13", "45"}, time.Date(2027, 1, 2, 13, 45, 0, 0, time.Local), false},
		{"defaults year and month", [dateFields]string{"", "", "20", "", ""}, time.Date(2026, 10, 20, 0, 0, 0, 0, time.Local), false},
		{"pads single digits", [dateFields]string{"2026", "3", "4", "5", "6"}, time.Date(2026, 3, 4, 5, 6, 0, 0, time.Local), false},
		{"day required", [dateFields]string{"2026", "10", "", "", ""}, time.Time{}, true},
		{"invalid day", [dateFields]string{"2026", "02", "30", "", ""}, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDateInput()
			d.now = func() time.Time { return now }
			for i, v := range tt.fields {
				d.fields[i].SetValue(v)
			}
			got, err := d.Value()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Value: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Value = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateInputSetTime(t *testing.T) {
	d := newDateInput()
	want := time.Date(2030, 12, 31, 23, 59, 0, 0, time.Local)
	d.SetTime(want)
	got, err := d.Value()
	if err != nil || !got.Equal(want) {
		t.Errorf("round trip = %v, %v; want %v", got, err, want)
	}
}
