package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiledecrypt/agiledecrypt/internal/exitcodes"
	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

const (
	sha1Dir   = "internal/agile/testdata/sha1/"
	sha512Dir = "internal/agile/testdata/sha512/"
	// Package key of both fixtures
	fixtureKey = "031425364758697a8b9cadbecfe0f102132435465768798a9bacbdcedff00112"
)

func TestMain(m *testing.M) {
	// Make sure no config file from the user's home is picked up
	home, err := os.MkdirTemp("", "agiledecrypt-home")
	if err != nil {
		panic(err)
	}
	os.Setenv("HOME", home)
	tlog.SetOutput(io.Discard)
	r := m.Run()
	os.RemoveAll(home)
	os.Exit(r)
}

// run executes the command line "args" and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writePassfile(t *testing.T, pw string) string {
	fn := filepath.Join(t.TempDir(), "pw.txt")
	require.NoError(t, os.WriteFile(fn, []byte(pw+"\n"), 0600))
	return fn
}

func readFixture(t *testing.T, fn string) []byte {
	b, err := os.ReadFile(fn)
	require.NoError(t, err)
	return b
}

func TestDecryptToFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.zip")
	_, err := run(t, "decrypt", "--info", sha1Dir+"EncryptionInfo", "--package", sha1Dir+"EncryptedPackage",
		"--passfile", writePassfile(t, "secret"), "-o", out)
	require.NoError(t, err)
	assert.Equal(t, readFixture(t, sha1Dir+"plaintext"), readFixture(t, out))

	// No temporary files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDecryptToStdout(t *testing.T) {
	stdout, err := run(t, "decrypt", "--info", sha512Dir+"EncryptionInfo", "--package", sha512Dir+"EncryptedPackage",
		"--passfile", writePassfile(t, "Password1234_"), "--verify-password", "--verify-integrity", "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, string(readFixture(t, sha512Dir+"plaintext")), stdout)
}

func TestDecryptPasswordIncorrect(t *testing.T) {
	_, err := run(t, "decrypt", "--info", sha1Dir+"EncryptionInfo", "--package", sha1Dir+"EncryptedPackage",
		"--passfile", writePassfile(t, "wrong"), "--verify-password")
	require.Error(t, err)
	assert.Equal(t, exitcodes.PasswordIncorrect, exitcodes.FromError(err))
}

// verify_password can also come from the environment
func TestDecryptVerifyFromEnv(t *testing.T) {
	t.Setenv("AGILEDECRYPT_VERIFY_PASSWORD", "true")
	_, err := run(t, "decrypt", "--info", sha1Dir+"EncryptionInfo", "--package", sha1Dir+"EncryptedPackage",
		"--passfile", writePassfile(t, "wrong"))
	assert.Equal(t, exitcodes.PasswordIncorrect, exitcodes.FromError(err))
}

func TestDecryptIntegrityMissing(t *testing.T) {
	_, err := run(t, "decrypt", "--info", sha1Dir+"EncryptionInfo", "--package", sha1Dir+"EncryptedPackage",
		"--passfile", writePassfile(t, "secret"), "--verify-integrity")
	assert.Equal(t, exitcodes.Integrity, exitcodes.FromError(err))
}

func TestDecryptPackageKey(t *testing.T) {
	// Dashes are allowed for readability
	key := fixtureKey[:16] + "-" + fixtureKey[16:32] + "-" + fixtureKey[32:]
	stdout, err := run(t, "decrypt", "--info", sha1Dir+"EncryptionInfo", "--package", sha1Dir+"EncryptedPackage",
		"--packagekey", key, "--workers", "1")
	require.NoError(t, err)
	assert.Equal(t, string(readFixture(t, sha1Dir+"plaintext")), stdout)

	_, err = run(t, "decrypt", "--info", sha1Dir+"EncryptionInfo", "--package", sha1Dir+"EncryptedPackage",
		"--packagekey", fixtureKey[:32])
	assert.Equal(t, exitcodes.PackageKey, exitcodes.FromError(err))
}

func TestDecryptErrors(t *testing.T) {
	pf := writePassfile(t, "secret")
	testCases := []struct {
		args []string
		want int
	}{
		{[]string{"decrypt", "--package", sha1Dir + "EncryptedPackage"}, exitcodes.Usage},
		{[]string{"decrypt", "--no-such-flag"}, exitcodes.Usage},
		{[]string{"decrypt", "--info", sha1Dir + "does-not-exist", "--package", sha1Dir + "EncryptedPackage", "--passfile", pf}, exitcodes.LoadInfo},
		// The plaintext is not an EncryptionInfo stream
		{[]string{"decrypt", "--info", sha1Dir + "plaintext", "--package", sha1Dir + "EncryptedPackage", "--passfile", pf}, exitcodes.LoadInfo},
		{[]string{"decrypt", "--info", sha1Dir + "EncryptionInfo", "--package", sha1Dir + "does-not-exist", "--passfile", pf}, exitcodes.ReadPackage},
		{[]string{"decrypt", "--info", sha1Dir + "EncryptionInfo", "--package", sha1Dir + "EncryptedPackage", "--passfile", sha1Dir + "does-not-exist"}, exitcodes.ReadPassword},
		{[]string{"decrypt", "--info", sha1Dir + "EncryptionInfo", "--package", sha1Dir + "EncryptedPackage", "--passfile", pf, "--workers", "-3"}, exitcodes.Usage},
	}
	for i, tc := range testCases {
		_, err := run(t, tc.args...)
		require.Error(t, err, "testcase %d", i)
		assert.Equal(t, tc.want, exitcodes.FromError(err), "testcase %d: %v", i, err)
	}
}

func TestInfo(t *testing.T) {
	stdout, err := run(t, "info", "--info", sha1Dir+"EncryptionInfo")
	require.NoError(t, err)
	assert.Contains(t, stdout, "spinCount=1000")
	assert.Contains(t, stdout, "DataIntegrity:     false")

	stdout, err = run(t, "info", "--info", sha512Dir+"EncryptionInfo", "--json")
	require.NoError(t, err)
	var r infoReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &r))
	assert.Equal(t, "4.4", r.Version)
	assert.Equal(t, "SHA512", r.Package.HashAlgorithm)
	assert.Equal(t, uint32(100000), r.KeyEncryptor.SpinCount)
	assert.Equal(t, 32, r.KeyEncryptor.EncryptedKeyValueLen)
	assert.True(t, r.DataIntegrity)
	// Only lengths, never the secrets themselves
	assert.NotContains(t, stdout, "saltValue")
}

func TestXray(t *testing.T) {
	stdout, err := run(t, "xray", "--info", sha512Dir+"EncryptionInfo", "--package", sha512Dir+"EncryptedPackage")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Header: Size: 5000, Reserved: 0", lines[0])
	assert.Contains(t, lines[1], "Chunk  0:")
	assert.Contains(t, lines[1], "Offset:     8 Len: 4096")
	assert.NotContains(t, lines[1], "partial")
	assert.Contains(t, lines[2], "Offset:  4104 Len: 912 (partial)")
}

func TestXrayDumpPackageKey(t *testing.T) {
	stdout, err := run(t, "xray", "--info", sha1Dir+"EncryptionInfo", "--dumppackagekey",
		"--passfile", writePassfile(t, "secret"))
	require.NoError(t, err)
	assert.Equal(t, fixtureKey+"\n", stdout)
}

func TestUnhexPackageKey(t *testing.T) {
	testCases := []struct {
		in   string
		ok   bool
		want string
	}{
		{"00112233445566778899aabbccddeeff", true, "00112233445566778899aabbccddeeff"},
		{"00112233-44556677-8899aabb-ccddeeff", true, "00112233445566778899aabbccddeeff"},
		{" 00112233 44556677\n8899aabbccddeeff\n", true, "00112233445566778899aabbccddeeff"},
		{"0011", false, ""},
		{"zz112233445566778899aabbccddeeff", false, ""},
	}
	for _, tc := range testCases {
		key, err := unhexPackageKey(tc.in, true, 16)
		if !tc.ok {
			assert.Equal(t, exitcodes.PackageKey, exitcodes.FromError(err), "in=%q", tc.in)
			continue
		}
		require.NoError(t, err, "in=%q", tc.in)
		assert.Equal(t, tc.want, hex.EncodeToString(key))
	}
}

func TestVersion(t *testing.T) {
	stdout, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, tlog.ProgramName+" "), stdout)
}
