package view

import "testing"

func TestMatcher(t *testing.T) {
	tests := []struct {
		term     string
		category string
		want     bool
	}{
		{"wor", "work", true},
		{"WOR", "work", true},
		{"work", "Homework", true},
		{"ork", "WORKSHOP", true},
		{"xyz", "work", false},
		{"work", "", false},
		{"cafe", "Café", true},
		{"CAFÉ", "cafe", true},
		{"仕事", "今日の仕事", true},
		{"仕事", "趣味", false},
		{"\u0301", "work", false},
		{"\u0301", "", false},
	}
	for _, tt := range tests {
		if got := NewMatcher(tt.term).Match(tt.category); got != tt.want {
			t.Errorf("Match(%q in %q) = %v, want %v", tt.term, tt.category, got, tt.want)
		}
	}
}

func TestFold(t *testing.T) {
	if Fold("Café") != Fold("CAFE") {
		t.Errorf("Fold(Café)=%q, Fold(CAFE)=%q", Fold("Café"), Fold("CAFE"))
	}
}
