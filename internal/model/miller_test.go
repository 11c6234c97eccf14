package model

import (
	"encoding/json"
	"testing"
)

func TestParseMillerIndex(t *testing.T) {
	tests := []struct {
		in   string
		want MillerIndex
	}{
		{"0,0,1", MillerIndex{0, 0, 1}},
		{"(0, 0, 1)", MillerIndex{0, 0, 1}},
		{"[1 -1 0]", MillerIndex{1, -1, 0}},
		{" 0 2 2 ", MillerIndex{0, 2, 2}},
		{"001", MillerIndex{0, 0, 1}},
		{"1-10", MillerIndex{1, -1, 0}},
		{"-102", MillerIndex{-1, 0, 2}},
		{"-1-1-2", MillerIndex{-1, -1, -2}},
		{"10,0,-3", MillerIndex{10, 0, -3}},
	}
	for _, tt := range tests {
		got, err := ParseMillerIndex(tt.in)
		if err != nil {
			t.Errorf("ParseMillerIndex(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMillerIndex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseMillerIndexErrors(t *testing.T) {
	for _, in := range []string{"", "()", "0,1", "1,2,3,4", "a,b,c", "12", "1--10", "10-", "1x0"} {
		if _, err := ParseMillerIndex(in); err == nil {
			t.Errorf("ParseMillerIndex(%q): expected error", in)
		}
	}
}

func TestMillerIndexString(t *testing.T) {
	if got := (MillerIndex{0, 0, 1}).String(); got != "(0, 0, 1)" {
		t.Errorf("unexpected %q", got)
	}
	if got := (MillerIndex{-1, 1, -2}).Compact(); got != "-11-2" {
		t.Errorf("unexpected compact %q", got)
	}
	if got := (MillerIndex{10, 0, 1}).Compact(); got != "10,0,1" {
		t.Errorf("unexpected compact %q", got)
	}
}

func TestMillerIndexJSON(t *testing.T) {
	data, err := json.Marshal(MillerIndex{1, -2, 0})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"(1, -2, 0)"` {
		t.Errorf("unexpected JSON %s", data)
	}
	var m MillerIndex
	if err := json.Unmarshal([]byte(`"0,1,2"`), &m); err != nil {
		t.Fatal(err)
	}
	if m != (MillerIndex{0, 1, 2}) {
		t.Errorf("unexpected %v", m)
	}
}
