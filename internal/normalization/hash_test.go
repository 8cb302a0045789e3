package normalization

import (
	"regexp"
	"strings"
	"testing"
)

var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

func TestSynthesizeHashShape(t *testing.T) {
	t.Parallel()

	seeds := []string{
		"",
		"a",
		"ABCDEF",
		"0xdeadbeef",
		"1718000000000",
		"hello world",
		strings.Repeat("f", 200),
		strings.Repeat("z", 200),
		"ünïcødé",
	}
	for _, seed := range seeds {
		for _, idx := range []int{0, 1, 7, -3} {
			got := SynthesizeHash(seed, idx)
			if len(got) != SynthesizedHashLen {
				t.Fatalf("SynthesizeHash(%q, %d) len: got=%d want=%d", seed, idx, len(got), SynthesizedHashLen)
			}
			if !hashPattern.MatchString(got) {
				t.Fatalf("SynthesizeHash(%q, %d) = %q, not 64 lowercase hex", seed, idx, got)
			}
		}
	}
}

func TestSynthesizeHashValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		seed string
		want string
	}{
		{
			name: "empty seed is all zeros",
			seed: "",
			want: strings.Repeat("0", 64),
		},
		{
			name: "hex seed is used directly and lowered",
			seed: "ABC123",
			want: "abc123" + strings.Repeat("0", 58),
		},
		{
			name: "non hex seed is hex encoded",
			seed: "hi",
			want: "6869" + strings.Repeat("0", 60),
		},
		{
			name: "0x prefix is not hex so the whole seed is encoded",
			seed: "0x1",
			want: "307831" + strings.Repeat("0", 58),
		},
		{
			name: "long hex seed is truncated",
			seed: strings.Repeat("ab", 40),
			want: strings.Repeat("ab", 32),
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SynthesizeHash(tc.seed, 0); got != tc.want {
				t.Fatalf("SynthesizeHash(%q): got=%q want=%q", tc.seed, got, tc.want)
			}
		})
	}
}

func TestSynthesizeHashDeterministic(t *testing.T) {
	t.Parallel()

	seed := SeedFor("0x5f1c0b7e2a8d", 3)
	a := SynthesizeHash(seed, 3)
	b := SynthesizeHash(seed, 3)
	if a != b {
		t.Fatalf("non-deterministic output: %q vs %q", a, b)
	}
}

func TestSeedForVariesHashPerIndex(t *testing.T) {
	t.Parallel()

	txHash := "0x" + strings.Repeat("9c", 32)
	seen := map[string]int{}
	for i := 0; i < 12; i++ {
		h := SynthesizeHash(SeedFor(txHash, i), i)
		if prev, ok := seen[h]; ok {
			t.Fatalf("index %d collides with index %d: %q", i, prev, h)
		}
		seen[h] = i
	}
}
