package pagination

import (
	"errors"
	"testing"
)

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 50, Max: 200}
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: 50},
		{in: -3, want: 50},
		{in: 10, want: 10},
		{in: 500, want: 200},
	}
	for _, tc := range tests {
		if got := ClampPageSize(tc.in, cfg); got != tc.want {
			t.Fatalf("ClampPageSize(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("ClampPageSize without defaults = %d, want 1", got)
	}
}

func TestOffsetTokens(t *testing.T) {
	if token := EncodeOffset(0); token != "" {
		t.Fatalf("EncodeOffset(0) = %q, want empty", token)
	}
	offset, err := DecodeOffset(EncodeOffset(40))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if offset != 40 {
		t.Fatalf("offset = %d, want 40", offset)
	}
	if offset, err := DecodeOffset(""); err != nil || offset != 0 {
		t.Fatalf("DecodeOffset(\"\") = %d, %v", offset, err)
	}
}

func TestDecodeOffsetRejectsForeignTokens(t *testing.T) {
	for _, token := range []string{"%%%", "bm90LWFuLW9mZnNldA", EncodeOffset(3)[:5]} {
		if _, err := DecodeOffset(token); !errors.Is(err, ErrInvalidPageToken) {
			t.Fatalf("DecodeOffset(%q) error = %v, want %v", token, err, ErrInvalidPageToken)
		}
	}
}
