package style

import "testing"

func TestDoS(t *testing.T) {
	for _, tc := range []struct {
		ms     []int
		expect string
	}{
		{nil, "\033[0m"},
		{[]int{1}, "\033[1m"},
		{[]int{1, 31}, "\033[1;31m"},
	} {
		if got := doS(tc.ms); got != tc.expect {
			t.Fatalf("bad sequence for %v: expected = %q, got = %q", tc.ms, tc.expect, got)
		}
	}
}
