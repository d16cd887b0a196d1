package parse

import (
	"reflect"
	"testing"
)

func TestKeyValue(t *testing.T) {
	tests := []struct {
		in       string
		delims   []rune
		key, val string
		ok       bool
	}{
		{"language=English", nil, "language", "English", true},
		{"title=a=b", nil, "title", "a=b", true},
		{"k:v", []rune{':', '='}, "k", "v", true},
		{"novalue", nil, "", "", false},
	}
	for _, tt := range tests {
		k, v, ok := KeyValue(tt.in, tt.delims...)
		if k != tt.key || v != tt.val || ok != tt.ok {
			t.Errorf("KeyValue(%q) = %q, %q, %v; want %q, %q, %v", tt.in, k, v, ok, tt.key, tt.val, tt.ok)
		}
	}
}

func TestPairs(t *testing.T) {
	got, err := Pairs([]string{"author=X", " language =En", "author=Y"})
	if err != nil {
		t.Fatalf("Pairs: %v", err)
	}
	want := map[string]string{"author": "X", "language": "En"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := Pairs([]string{"=x"}); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := Pairs([]string{"bare"}); err == nil {
		t.Error("expected error without '='")
	}
}
