package wmo

import "testing"

func TestDescribe(t *testing.T) {
	if got := Describe(0); got != "Clear sky" {
		t.Errorf("code 0: got %q", got)
	}
	if got := Describe(95); got != "Thunderstorm" {
		t.Errorf("code 95: got %q", got)
	}
	if got := Describe(42); got != Unknown {
		t.Errorf("unmapped code: got %q", got)
	}
	if got := DescribePtr(nil); got != Unknown {
		t.Errorf("nil code: got %q", got)
	}
}
