package speed

import (
	"testing"

	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
)

/*
Make the "speed" benchmarks also accessible to the standard test system.
Example run:

$ go test -bench .
*/

func BenchmarkDecryptChunk128(b *testing.B) {
	bDecryptChunk(b, 16)
}

func BenchmarkDecryptChunk256(b *testing.B) {
	bDecryptChunk(b, 32)
}

func BenchmarkDecryptPackage(b *testing.B) {
	bDecryptPackage(b)
}

func BenchmarkSpinSHA1(b *testing.B) {
	bSpinHash(b, cryptocore.SHA1)
}

func BenchmarkSpinSHA512(b *testing.B) {
	bSpinHash(b, cryptocore.SHA512)
}

func TestParseCPUInfo(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"processor\t: 0\nmodel name\t: Intel(R) Core(TM) i5-3470 CPU @ 3.20GHz\n",
			"Intel(R) Core(TM) i5-3470 CPU @ 3.20GHz"},
		{"processor\t: 0\nHardware\t: BCM2835\n", "BCM2835"},
		{"model name\n", ""},
		{"", ""},
	}
	for _, tc := range testCases {
		have := parseCPUInfo(tc.in)
		if have != tc.want {
			t.Errorf("want=%q have=%q", tc.want, have)
		}
	}
}

func TestMsPerSpins(t *testing.T) {
	r := testing.BenchmarkResult{N: 10, T: 1e9}
	// 100 ms per benchSpinCount spins, 100x more spins
	if have := msPerSpins(r, 100*benchSpinCount); have < 9999 || have > 10001 {
		t.Errorf("have %f", have)
	}
	if have := msPerSpins(testing.BenchmarkResult{}, 1); have != 0 {
		t.Errorf("have %f", have)
	}
}
