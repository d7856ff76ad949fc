package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agiledecrypt/agiledecrypt/internal/agile"
	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
	"github.com/agiledecrypt/agiledecrypt/internal/encinfo"
	"github.com/agiledecrypt/agiledecrypt/internal/exitcodes"
	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

func newDecryptCmd(args *argContainer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt an EncryptedPackage stream",
		Long: `Decrypt an EncryptedPackage stream using the parameters from the
EncryptionInfo stream.

Examples:
  # Prompt for the password, write the package to report.xlsx
  ` + tlog.ProgramName + ` decrypt --info EncryptionInfo --package EncryptedPackage -o report.xlsx

  # Password from a file, output to stdout
  ` + tlog.ProgramName + ` decrypt --info EncryptionInfo --package EncryptedPackage --passfile pw.txt > out.zip

  # Known package key, for example from "xray --dumppackagekey"
  ` + tlog.ProgramName + ` decrypt --info EncryptionInfo --package EncryptedPackage --packagekey stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "info", "package"); err != nil {
				return err
			}
			return doDecrypt(args, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&args.info, "info", "", "EncryptionInfo stream file")
	f.StringVar(&args.pkg, "package", "", "EncryptedPackage stream file")
	f.StringVarP(&args.output, "output", "o", "", "Write the decrypted package to this file instead of stdout")
	f.StringArrayVar(&args.passfile, "passfile", nil, "Read password from file (can be passed multiple times, the first lines are concatenated)")
	f.StringArrayVar(&args.extpass, "extpass", nil, "Use external program for the password prompt")
	f.StringVar(&args.packagekey, "packagekey", "", "Decrypt with explicit hex package key, or \"stdin\" to read it from stdin")
	f.BoolVar(&args.verifyPassword, "verify-password", false, "Check the password verifier before decrypting")
	f.BoolVar(&args.verifyIntegrity, "verify-integrity", false, "Check the package HMAC before decrypting")
	f.IntVar(&args.workers, "workers", 0, "Number of chunks decrypted in parallel (0 = one per CPU)")
	return cmd
}

// loadDescriptor loads and validates the EncryptionInfo stream.
func loadDescriptor(filename string) (*encinfo.Descriptor, error) {
	desc, err := encinfo.Load(filename)
	if err != nil {
		return nil, exitcodes.Wrap(fmt.Errorf("loading EncryptionInfo failed: %w", err), exitcodes.LoadInfo)
	}
	// Unsupported parameters map to their own exit code
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

func newDecryptor(args *argContainer) *agile.Decryptor {
	return agile.New(cryptocore.New(), agile.Options{
		Workers:         args._cfg.Workers,
		VerifyPassword:  args._cfg.VerifyPassword,
		VerifyIntegrity: args._cfg.VerifyIntegrity,
	})
}

func doDecrypt(args *argContainer, stdout io.Writer) error {
	desc, err := loadDescriptor(args.info)
	if err != nil {
		return err
	}
	pkg, err := os.ReadFile(args.pkg)
	if err != nil {
		return exitcodes.Wrap(err, exitcodes.ReadPackage)
	}
	d := newDecryptor(args)
	key, err := getPackageKey(args, d, desc)
	if err != nil {
		return err
	}
	defer cryptocore.Wipe(key)
	tlog.Info.Println("Decrypting package")
	plain, err := d.DecryptWithKey(desc, key, pkg)
	if err != nil {
		return err
	}
	return writeOutput(args.output, plain, stdout)
}

// writeOutput writes "data" to "stdout" when "path" is empty or "-".
// Otherwise it writes to a temporary file next to "path" and renames it, so
// that a failed run never leaves a half-written package behind.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == "-" {
		if _, err := stdout.Write(data); err != nil {
			return exitcodes.Wrap(err, exitcodes.WriteOutput)
		}
		return nil
	}
	tmp := path + ".tmp." + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		os.Remove(tmp)
		return exitcodes.Wrap(err, exitcodes.WriteOutput)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return exitcodes.Wrap(err, exitcodes.WriteOutput)
	}
	tlog.Info.Println(tlog.Green(fmt.Sprintf("Decrypted %d bytes to %s", len(data), path)))
	return nil
}
