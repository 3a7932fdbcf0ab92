package sfi

import (
	"math"
	"testing"
)

type mapSource map[string]map[string]uint64

func (m mapSource) Prime(key, value string) uint64 {
	if p, ok := m[key][value]; ok {
		return p
	}
	return 1
}

var dict = mapSource{
	"color": {"red": 2, "blue": 3},
	"size":  {"S": 5, "M": 7},
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string][]string
		keys  []string
		want  uint64
	}{
		{
			name:  "single valued",
			attrs: map[string][]string{"color": {"red"}, "size": {"S"}},
			keys:  []string{"color", "size"},
			want:  10,
		},
		{
			name:  "multi valued",
			attrs: map[string][]string{"color": {"red", "blue"}, "size": {"M"}},
			keys:  []string{"color", "size"},
			want:  42,
		},
		{
			name:  "unknown value skipped",
			attrs: map[string][]string{"color": {"chartreuse"}, "size": {"M"}},
			keys:  []string{"color", "size"},
			want:  7,
		},
		{
			name:  "key not in relevant set",
			attrs: map[string][]string{"color": {"red"}, "size": {"S"}},
			keys:  []string{"size"},
			want:  5,
		},
		{
			name:  "no attributes",
			attrs: map[string][]string{},
			keys:  []string{"color", "size"},
			want:  Sentinel,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, overflowed := Encode(tt.attrs, tt.keys, dict)
			if overflowed {
				t.Fatal("unexpected overflow")
			}
			if got != tt.want {
				t.Fatalf("Encode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	attrs := map[string][]string{"color": {"red", "blue"}, "size": {"S"}}
	keys := []string{"color", "size"}
	first, _ := Encode(attrs, keys, dict)
	for i := 0; i < 10; i++ {
		got, _ := Encode(attrs, keys, dict)
		if got != first {
			t.Fatalf("run %d: Encode = %d, want %d", i, got, first)
		}
	}
}

func TestEncodeOverflow(t *testing.T) {
	big := mapSource{"k": {"v": math.MaxUint64 - 58}} // prime 2^64-59
	attrs := map[string][]string{"k": {"v"}, "j": {"w"}}
	src := mapSource{
		"k": big["k"],
		"j": {"w": 3},
	}

	got, overflowed := Encode(attrs, []string{"k", "j"}, src)
	if !overflowed {
		t.Fatal("expected overflow")
	}
	if got != Sentinel {
		t.Fatalf("overflowed Encode = %d, want sentinel %d", got, Sentinel)
	}
}

func TestEncodeOne(t *testing.T) {
	got, overflowed := EncodeOne(map[string]string{"color": "blue", "size": "M"}, []string{"color", "size"}, dict)
	if overflowed {
		t.Fatal("unexpected overflow")
	}
	if got != 21 {
		t.Fatalf("EncodeOne = %d, want 21", got)
	}
}

func TestMulOverflows(t *testing.T) {
	if MulOverflows(1, math.MaxUint64) {
		t.Error("1 * MaxUint64 must not overflow")
	}
	if !MulOverflows(2, math.MaxUint64/2+1) {
		t.Error("expected overflow")
	}
	if MulOverflows(math.MaxUint64/3, 3) {
		t.Error("MaxUint64/3 * 3 must not overflow")
	}
}

func TestDivides(t *testing.T) {
	tests := []struct {
		value, query uint64
		want         bool
	}{
		{10, 2, true},
		{10, 1, true},
		{10, 0, true}, // zero normalized to wildcard
		{10, 3, false},
		{Sentinel, 1, true},
		{Sentinel, 2, false}, // sentinel never satisfies a constraint
	}
	for _, tt := range tests {
		if got := Divides(tt.value, tt.query); got != tt.want {
			t.Errorf("Divides(%d, %d) = %v, want %v", tt.value, tt.query, got, tt.want)
		}
	}
}
