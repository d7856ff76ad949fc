package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agiledecrypt/agiledecrypt/internal/encinfo"
	"github.com/agiledecrypt/agiledecrypt/internal/exitcodes"
	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

// cipherInfo is the non-secret part of a <keyData> or <p:encryptedKey>.
type cipherInfo struct {
	CipherAlgorithm string `json:"cipherAlgorithm"`
	CipherChaining  string `json:"cipherChaining"`
	HashAlgorithm   string `json:"hashAlgorithm"`
	KeyBits         int    `json:"keyBits"`
	BlockSize       int    `json:"blockSize"`
	HashSize        int    `json:"hashSize"`
	SaltSize        int    `json:"saltSize"`
}

// infoReport is what "info" prints. Secrets are reduced to their lengths.
type infoReport struct {
	Version      string     `json:"version"`
	Package      cipherInfo `json:"package"`
	KeyEncryptor struct {
		cipherInfo
		SpinCount                     uint32 `json:"spinCount"`
		EncryptedKeyValueLen          int    `json:"encryptedKeyValueLen"`
		EncryptedVerifierHashInputLen int    `json:"encryptedVerifierHashInputLen"`
		EncryptedVerifierHashValueLen int    `json:"encryptedVerifierHashValueLen"`
	} `json:"keyEncryptor"`
	DataIntegrity bool `json:"dataIntegrity"`
}

func newCipherInfo(k *encinfo.KeyData) cipherInfo {
	return cipherInfo{
		CipherAlgorithm: k.CipherAlgorithm,
		CipherChaining:  k.CipherChaining,
		HashAlgorithm:   k.HashAlgorithm,
		KeyBits:         k.KeyBits,
		BlockSize:       k.BlockSize,
		HashSize:        k.HashSize,
		SaltSize:        len(k.SaltValue),
	}
}

func newInfoReport(desc *encinfo.Descriptor) *infoReport {
	r := &infoReport{
		Version:       desc.Version.String(),
		Package:       newCipherInfo(&desc.KeyData),
		DataIntegrity: desc.DataIntegrity != nil,
	}
	ke := &desc.KeyEncryptor
	r.KeyEncryptor.cipherInfo = newCipherInfo(&ke.KeyData)
	r.KeyEncryptor.SpinCount = ke.SpinCount
	r.KeyEncryptor.EncryptedKeyValueLen = len(ke.EncryptedKeyValue)
	r.KeyEncryptor.EncryptedVerifierHashInputLen = len(ke.EncryptedVerifierHashInput)
	r.KeyEncryptor.EncryptedVerifierHashValueLen = len(ke.EncryptedVerifierHashValue)
	return r
}

func newInfoCmd(args *argContainer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the encryption parameters from an EncryptionInfo stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "info"); err != nil {
				return err
			}
			return info(cmd.OutOrStdout(), args.info, args.json)
		},
	}
	cmd.Flags().StringVar(&args.info, "info", "", "EncryptionInfo stream file")
	cmd.Flags().BoolVar(&args.json, "json", false, "Print as JSON")
	return cmd
}

// info pretty-prints the contents of the EncryptionInfo stream at "filename"
// for human consumption, stripping out sensitive data.
// The descriptor is not validated, so unsupported files can be inspected
// too.
func info(w io.Writer, filename string, asJSON bool) error {
	desc, err := encinfo.Load(filename)
	if err != nil {
		return exitcodes.Wrap(fmt.Errorf("loading EncryptionInfo failed: %w", err), exitcodes.LoadInfo)
	}
	r := newInfoReport(desc)
	if asJSON {
		fmt.Fprintln(w, tlog.JSONDump(r))
		return nil
	}
	p := r.Package
	k := r.KeyEncryptor
	// Pretty-print
	fmt.Fprintf(w, "Version:           %s (Agile)\n", r.Version)
	fmt.Fprintf(w, "Package:           %s %d-bit %s, %s, blockSize=%d saltSize=%d\n",
		p.CipherAlgorithm, p.KeyBits, p.CipherChaining, p.HashAlgorithm, p.BlockSize, p.SaltSize)
	fmt.Fprintf(w, "KeyEncryptor:      %s %d-bit %s, %s, spinCount=%d\n",
		k.CipherAlgorithm, k.KeyBits, k.CipherChaining, k.HashAlgorithm, k.SpinCount)
	fmt.Fprintf(w, "EncryptedKey:      %dB\n", k.EncryptedKeyValueLen)
	fmt.Fprintf(w, "Verifier:          input=%dB value=%dB\n",
		k.EncryptedVerifierHashInputLen, k.EncryptedVerifierHashValueLen)
	fmt.Fprintf(w, "DataIntegrity:     %v\n", r.DataIntegrity)
	return nil
}
