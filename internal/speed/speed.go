// Package speed implements the "speed" command, similar to "openssl speed".
// It benchmarks the primitives the decryption pipeline spends its time in:
// chunk decryption and the spin-count hash loop.
package speed

import (
	"fmt"
	"runtime"
	"testing"

	"golang.org/x/sys/cpu"

	"github.com/agiledecrypt/agiledecrypt/internal/contentenc"
	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
	"github.com/agiledecrypt/agiledecrypt/internal/keyderiv"
)

// Spin count used by the hash benchmarks. Office writes 100000, we use less
// so one iteration does not take forever.
const benchSpinCount = 1000

// Run - run the speed the test and print the results.
func Run() {
	cpuName := cpuModelName()
	if cpuName == "" {
		cpuName = "unknown CPU"
	}
	fmt.Printf("%s; %s/%s; %d cores; AES acceleration: %v\n",
		cpuName, runtime.GOOS, runtime.GOARCH, runtime.NumCPU(), hasAESAcceleration())

	bTable := []struct {
		name string
		f    func(*testing.B)
	}{
		{name: "AES-128-CBC", f: func(b *testing.B) { bDecryptChunk(b, 16) }},
		{name: "AES-256-CBC", f: func(b *testing.B) { bDecryptChunk(b, 32) }},
		{name: "AES-256-CBC-parallel", f: bDecryptPackage},
	}
	for _, b := range bTable {
		fmt.Printf("%-22s\t", b.name)
		mbs := mbPerSec(testing.Benchmark(b.f))
		if mbs > 0 {
			fmt.Printf("%7.2f MB/s\n", mbs)
		} else {
			fmt.Printf("    N/A\n")
		}
	}

	hTable := []struct {
		name string
		alg  cryptocore.HashAlgo
	}{
		{name: "spin-SHA1", alg: cryptocore.SHA1},
		{name: "spin-SHA512", alg: cryptocore.SHA512},
	}
	for _, h := range hTable {
		fmt.Printf("%-22s\t", h.name)
		r := testing.Benchmark(func(b *testing.B) { bSpinHash(b, h.alg) })
		fmt.Printf("%7.0f ms per %d spins\n", msPerSpins(r, keyderiv.DefaultSpinCount), keyderiv.DefaultSpinCount)
	}
}

// hasAESAcceleration reports whether the CPU has AES instructions that the
// Go runtime uses.
func hasAESAcceleration() bool {
	return cpu.X86.HasAES || cpu.ARM64.HasAES || cpu.S390X.HasAES
}

func mbPerSec(r testing.BenchmarkResult) float64 {
	if r.Bytes <= 0 || r.T <= 0 || r.N <= 0 {
		return 0
	}
	return (float64(r.Bytes) * float64(r.N) / 1e6) / r.T.Seconds()
}

// msPerSpins extrapolates a benchSpinCount benchmark to "spins" iterations.
func msPerSpins(r testing.BenchmarkResult, spins int) float64 {
	if r.N <= 0 || r.T <= 0 {
		return 0
	}
	perOp := r.T.Seconds() / float64(r.N)
	return perOp * float64(spins) / benchSpinCount * 1000
}

// bDecryptChunk benchmarks the decryption of one full chunk
func bDecryptChunk(b *testing.B, keyLen int) {
	p := cryptocore.New()
	key := cryptocore.RandBytes(keyLen)
	iv := cryptocore.RandBytes(16)
	in := make([]byte, contentenc.ChunkSize)
	b.SetBytes(int64(len(in)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.DecryptCBC(key, iv, in); err != nil {
			b.Fatal(err)
		}
	}
}

// bDecryptPackage benchmarks DecryptPackage on a 1 MiB package with one
// worker per CPU
func bDecryptPackage(b *testing.B) {
	const plainLen = 1 << 20
	ce, err := contentenc.New(cryptocore.New(), contentenc.Params{
		CipherAlgorithm: cryptocore.CipherAES,
		CipherChaining:  cryptocore.ChainingModeCBC,
		Hash:            cryptocore.SHA512,
		BlockSize:       16,
		Salt:            cryptocore.RandBytes(16),
	}, cryptocore.RandBytes(32), 0)
	if err != nil {
		b.Fatal(err)
	}
	blob := (&contentenc.PackageHeader{Size: plainLen}).Pack()
	blob = append(blob, make([]byte, plainLen)...)
	b.SetBytes(plainLen)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ce.DecryptPackage(blob); err != nil {
			b.Fatal(err)
		}
	}
}

// bSpinHash benchmarks benchSpinCount rounds of the password hash loop
func bSpinHash(b *testing.B, alg cryptocore.HashAlgo) {
	p := cryptocore.New()
	salt := cryptocore.RandBytes(16)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := keyderiv.SpinHash(p, "benchmark", alg, salt, benchSpinCount); err != nil {
			b.Fatal(err)
		}
	}
}
