package cryptocore

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func unhex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// TestDecryptCBC checks against the NIST SP 800-38A F.2.2 vector.
func TestDecryptCBC(t *testing.T) {
	key := unhex("2b7e151628aed2a6abf7158809cf4f3c")
	iv := unhex("000102030405060708090a0b0c0d0e0f")
	ct := unhex("7649abac8119b246cee98e9b12e9197d" + "5086cb9b507219ee95db113a917678b2")
	want := unhex("6bc1bee22e409f96e93d7e117393172a" + "ae2d8a571e03ac9c9eb76fac45af8e51")

	p := New()
	have, err := p.DecryptCBC(key, iv, ct)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(have, want) {
		t.Errorf("\nhave=%x\nwant=%x", have, want)
	}
}

func TestDecryptCBCErrors(t *testing.T) {
	p := New()
	testCases := []struct {
		name string
		key  []byte
		iv   []byte
		ct   []byte
	}{
		{"short key", make([]byte, 15), make([]byte, 16), make([]byte, 16)},
		{"nil key", nil, make([]byte, 16), make([]byte, 16)},
		{"short iv", make([]byte, 32), make([]byte, 8), make([]byte, 16)},
		{"partial block", make([]byte, 32), make([]byte, 16), make([]byte, 17)},
	}
	for _, tc := range testCases {
		_, err := p.DecryptCBC(tc.key, tc.iv, tc.ct)
		if !errors.Is(err, ErrPrimitive) {
			t.Errorf("%s: want ErrPrimitive, have %v", tc.name, err)
		}
	}
}

func TestHash(t *testing.T) {
	p := New()
	testCases := []struct {
		alg  HashAlgo
		want string
	}{
		{SHA1, "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{SHA256, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{SHA384, "cb00753f45a35e8bb5a03d699ac65007272c32ab0eded1631a8b605a43ff5bed8086072ba1e7cc2358baeca134c825a7"},
		{SHA512, "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"},
	}
	for _, tc := range testCases {
		// Split input must hash like the concatenation
		have, err := p.Hash(tc.alg, []byte("a"), []byte("bc"))
		if err != nil {
			t.Fatal(err)
		}
		if hex.EncodeToString(have) != tc.want {
			t.Errorf("%v: have=%x want=%s", tc.alg, have, tc.want)
		}
		if len(have) != tc.alg.Size() {
			t.Errorf("%v: Size()=%d but digest has %d bytes", tc.alg, tc.alg.Size(), len(have))
		}
	}
	_, err := p.Hash(HashAlgo(42), []byte("abc"))
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("want ErrUnsupportedAlgorithm, have %v", err)
	}
}

// RFC 4231 test case 2
func TestHMAC(t *testing.T) {
	p := New()
	have, err := p.HMAC(SHA256, []byte("Jefe"), []byte("what do ya want "), []byte("for nothing?"))
	if err != nil {
		t.Fatal(err)
	}
	want := "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843"
	if hex.EncodeToString(have) != want {
		t.Errorf("have=%x want=%s", have, want)
	}
}

func TestParseHashAlgo(t *testing.T) {
	testCases := []struct {
		in   string
		want HashAlgo
	}{
		{"SHA1", SHA1},
		{"SHA-1", SHA1},
		{"SHA256", SHA256},
		{"sha384", SHA384},
		{"SHA512", SHA512},
		{"SHA-512", SHA512},
	}
	for _, tc := range testCases {
		have, err := ParseHashAlgo(tc.in)
		if err != nil {
			t.Errorf("%q: %v", tc.in, err)
			continue
		}
		if have != tc.want {
			t.Errorf("%q: have=%v want=%v", tc.in, have, tc.want)
		}
	}
	for _, bad := range []string{"", "MD5", "SHA3-256", "RIPEMD-160"} {
		if _, err := ParseHashAlgo(bad); !errors.Is(err, ErrUnsupportedAlgorithm) {
			t.Errorf("%q: want ErrUnsupportedAlgorithm, have %v", bad, err)
		}
	}
}

func TestFitLength(t *testing.T) {
	h := bytes.Repeat([]byte{0xaa}, 40)

	// Truncate: first 32 bytes
	k := FitLength(h, 32)
	if !bytes.Equal(k, h[:32]) {
		t.Errorf("truncate: have=%x", k)
	}
	// Pad: 40 hash bytes followed by 24 bytes of 0x36
	k = FitLength(h, 64)
	want := append(append([]byte{}, h...), bytes.Repeat([]byte{0x36}, 24)...)
	if !bytes.Equal(k, want) {
		t.Errorf("pad: have=%x", k)
	}
	// Equal length is a copy, not an alias
	k = FitLength(h, 40)
	k[0] = 0
	if h[0] != 0xaa {
		t.Errorf("FitLength returned an alias of its input")
	}
}

func TestCheckCipher(t *testing.T) {
	if err := CheckCipher("AES", "ChainingModeCBC"); err != nil {
		t.Error(err)
	}
	if err := CheckCipher("AES", ChainingModeCFB); !errors.Is(err, ErrUnsupportedChaining) {
		t.Errorf("want ErrUnsupportedChaining, have %v", err)
	}
	if err := CheckCipher("DES", "ChainingModeCBC"); !errors.Is(err, ErrUnsupportedCipher) {
		t.Errorf("want ErrUnsupportedCipher, have %v", err)
	}
}
