package main

import (
	"testing"
)

func TestParseSelection(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		max     int
		want    []int
		wantErr bool
	}{
		{"empty selects all", "", 10, nil, false},
		{"single index", "3", 10, []int{3}, false},
		{"comma list", "1,3,5", 10, []int{1, 3, 5}, false},
		{"range", "5-8", 10, []int{5, 6, 7, 8}, false},
		{"mixed", "1,3,5-8", 10, []int{1, 3, 5, 6, 7, 8}, false},
		{"duplicates collapsed", "2,2,1-3", 10, []int{2, 1, 3}, false},
		{"spaces tolerated", " 1 , 4 - 5 ", 10, []int{1, 4, 5}, false},
		{"zero is out of range", "0", 10, nil, true},
		{"above max", "11", 10, nil, true},
		{"range above max", "8-11", 10, nil, true},
		{"inverted range", "8-5", 10, nil, true},
		{"garbage", "abc", 10, nil, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := parseSelection(c.input, c.max)
			if c.wantErr {
				if err == nil {
					t.Fatalf("parseSelection(%q) = %v, want error", c.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSelection(%q): %v", c.input, err)
			}
			if len(got) != len(c.want) {
				t.Fatalf("parseSelection(%q) = %v, want %v", c.input, got, c.want)
			}
			for i := range c.want {
				if got[i] != c.want[i] {
					t.Fatalf("parseSelection(%q) = %v, want %v", c.input, got, c.want)
				}
			}
		})
	}
}
