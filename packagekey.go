package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/agiledecrypt/agiledecrypt/internal/agile"
	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
	"github.com/agiledecrypt/agiledecrypt/internal/encinfo"
	"github.com/agiledecrypt/agiledecrypt/internal/exitcodes"
	"github.com/agiledecrypt/agiledecrypt/internal/readpassword"
	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

// unhexPackageKey - Convert a hex-encoded package key to binary.
// Dashes and whitespace are ignored so keys can be pasted in groups.
func unhexPackageKey(packagekey string, fromStdin bool, keyLen int) ([]byte, error) {
	packagekey = strings.Join(strings.Fields(strings.Replace(packagekey, "-", "", -1)), "")
	key, err := hex.DecodeString(packagekey)
	if err != nil {
		return nil, exitcodes.Wrap(fmt.Errorf("could not parse package key: %v", err), exitcodes.PackageKey)
	}
	if len(key) != keyLen {
		return nil, exitcodes.NewErr(fmt.Sprintf("package key has length %d but we require length %d",
			len(key), keyLen), exitcodes.PackageKey)
	}
	tlog.Info.Printf("Using explicit package key.")
	if !fromStdin {
		tlog.Info.Println(tlog.Yellow("THE PACKAGE KEY IS VISIBLE VIA \"ps ax\" AND MAY BE STORED IN YOUR SHELL HISTORY!"))
	}
	return key, nil
}

// getPackageKey looks at `args.packagekey`, gets the package key from the
// source the user wanted (string on the command line, stdin) and returns it
// in binary. Without --packagekey the password is read and the key is
// unwrapped from the descriptor.
func getPackageKey(args *argContainer, d *agile.Decryptor, desc *encinfo.Descriptor) ([]byte, error) {
	keyLen := desc.KeyData.KeyBits / 8
	// "--packagekey=stdin"
	if args.packagekey == "stdin" {
		in, err := readpassword.Once(nil, nil, "Package key")
		if err != nil {
			return nil, exitcodes.Wrap(err, exitcodes.PackageKey)
		}
		return unhexPackageKey(string(in), true, keyLen)
	}
	// "--packagekey=031425..."
	if args.packagekey != "" {
		return unhexPackageKey(args.packagekey, false, keyLen)
	}
	pw, err := readpassword.Once(args.extpass, args.passfile, "")
	if err != nil {
		if errors.Is(err, readpassword.ErrEmptyPassword) {
			return nil, err
		}
		return nil, exitcodes.Wrap(err, exitcodes.ReadPassword)
	}
	defer cryptocore.Wipe(pw)
	tlog.Info.Printf("Deriving package key (spinCount %d)", desc.KeyEncryptor.SpinCount)
	return d.PackageKey(desc, string(pw))
}
