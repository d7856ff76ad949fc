package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agiledecrypt/agiledecrypt/internal/contentenc"
	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
	"github.com/agiledecrypt/agiledecrypt/internal/exitcodes"
)

func newXrayCmd(args *argContainer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xray",
		Short: "Show the chunk layout of an EncryptedPackage stream",
		Long: `Show the length prefix and the offset, length and IV of every chunk of an
EncryptedPackage stream. No password is needed for that.

With --dumppackagekey, the password is read and the package key is printed
in hex. It can be passed to "decrypt --packagekey" later.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if args.dumpPackageKey {
				if err := requireFlags(cmd, "info"); err != nil {
					return err
				}
				return dumpPackageKey(cmd.OutOrStdout(), args)
			}
			if err := requireFlags(cmd, "info", "package"); err != nil {
				return err
			}
			return xray(cmd.OutOrStdout(), args.info, args.pkg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&args.info, "info", "", "EncryptionInfo stream file")
	f.StringVar(&args.pkg, "package", "", "EncryptedPackage stream file")
	f.BoolVar(&args.dumpPackageKey, "dumppackagekey", false, "Decrypt and dump the package key")
	f.StringArrayVar(&args.passfile, "passfile", nil, "Read password from file")
	f.StringArrayVar(&args.extpass, "extpass", nil, "Use external program for the password prompt")
	return cmd
}

func dumpPackageKey(w io.Writer, args *argContainer) error {
	desc, err := loadDescriptor(args.info)
	if err != nil {
		return err
	}
	key, err := getPackageKey(args, newDecryptor(args), desc)
	if err != nil {
		return err
	}
	defer cryptocore.Wipe(key)
	fmt.Fprintln(w, hex.EncodeToString(key))
	return nil
}

func prettyPrintHeader(w io.Writer, h *contentenc.PackageHeader) {
	fmt.Fprintf(w, "Header: Size: %d, Reserved: %d\n", h.Size, h.Reserved)
}

// xray prints the package layout. The stream is read chunk by chunk, so
// this works on packages of any size.
func xray(w io.Writer, infoFile string, pkgFile string) error {
	desc, err := loadDescriptor(infoFile)
	if err != nil {
		return err
	}
	fd, err := os.Open(pkgFile)
	if err != nil {
		return exitcodes.Wrap(err, exitcodes.ReadPackage)
	}
	defer fd.Close()
	fi, err := fd.Stat()
	if err != nil {
		return exitcodes.Wrap(err, exitcodes.ReadPackage)
	}
	size := uint64(fi.Size())
	if size == 0 {
		fmt.Fprintln(w, "empty file")
		return nil
	}
	headerBytes := make([]byte, contentenc.PackageOffset)
	n, err := fd.ReadAt(headerBytes, 0)
	if err == io.EOF {
		return exitcodes.Wrap(fmt.Errorf("%w: read %d bytes, want %d",
			contentenc.ErrInvalidPackageHeader, n, contentenc.PackageOffset), exitcodes.ReadPackage)
	} else if err != nil {
		return exitcodes.Wrap(err, exitcodes.ReadPackage)
	}
	header, err := contentenc.ParsePackageHeader(headerBytes)
	if err != nil {
		return err
	}
	prettyPrintHeader(w, header)

	kd := &desc.KeyData
	p := cryptocore.New()
	var padded uint64
	for _, c := range contentenc.ExplodeChunks(size) {
		iv, err := contentenc.ChunkIV(p, kd.Hash(), kd.SaltValue, kd.BlockSize, c.Index)
		if err != nil {
			return err
		}
		l := c.Length
		if rem := l % uint64(kd.BlockSize); rem != 0 {
			l += uint64(kd.BlockSize) - rem
		}
		padded += l
		partial := ""
		if c.Partial() {
			partial = " (partial)"
		}
		fmt.Fprintf(w, "Chunk %2d: IV: %s, Offset: %5d Len: %d%s\n",
			c.Index, hex.EncodeToString(iv), c.Offset, c.Length, partial)
	}
	if uint64(header.Size) > padded {
		fmt.Fprintf(w, "WARNING: declared size %d exceeds the %d bytes the chunks decrypt to\n",
			header.Size, padded)
	}
	return nil
}
