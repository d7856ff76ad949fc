package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agiledecrypt/agiledecrypt/internal/config"
	"github.com/agiledecrypt/agiledecrypt/internal/exitcodes"
	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

// argContainer stores the parsed CLI options and arguments
type argContainer struct {
	debug, quiet, verifyPassword, verifyIntegrity, json, dumpPackageKey bool
	// Input streams and output file
	info, pkg, output string
	packagekey         string
	// Configuration file name override
	config  string
	workers int
	// --extpass and --passfile can be passed multiple times
	extpass, passfile []string
	// Helper variables that are NOT cli options all start with an underscore
	// _cfg is the merged result of defaults, config file, environment and flags
	_cfg *config.Config
}

// newRootCmd builds the command tree. Every invocation gets its own
// argContainer so tests can run commands side by side.
func newRootCmd() *cobra.Command {
	args := &argContainer{}
	root := &cobra.Command{
		Use:   tlog.ProgramName,
		Short: "Decrypt password-protected Office (OOXML Agile Encryption) packages",
		Long: tlog.ProgramName + ` decrypts the EncryptedPackage stream of a password-protected
Office document, given the EncryptionInfo stream and the password.

Both streams have to be extracted from the OLE compound file first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return args.loadConfig(cmd)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitcodes.Wrap(err, exitcodes.Usage)
	})
	pf := root.PersistentFlags()
	pf.StringVar(&args.config, "config", "", "Use specified config file instead of searching for "+config.FileName+".yaml")
	pf.BoolVarP(&args.debug, "debug", "d", false, "Enable debug output")
	pf.BoolVarP(&args.quiet, "quiet", "q", false, "Quiet - silence informational messages")

	root.AddCommand(
		newDecryptCmd(args),
		newInfoCmd(args),
		newXrayCmd(args),
		newSpeedCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig merges config file, environment and the flags of "cmd" and
// applies the logging settings.
func (args *argContainer) loadConfig(cmd *cobra.Command) error {
	l := config.NewLoader(args.config)
	if err := l.BindFlags(cmd.Flags()); err != nil {
		return exitcodes.Wrap(err, exitcodes.Usage)
	}
	cfg, err := l.Load()
	if err != nil {
		return exitcodes.Wrap(err, exitcodes.Usage)
	}
	tlog.Debug.Enabled = cfg.Debug
	tlog.Info.Enabled = !cfg.Quiet
	args._cfg = cfg
	tlog.Debug.Printf("cli args: %s", prettyArgs(cmd))
	tlog.Debug.Printf("config: %#v", *cfg)
	return nil
}

// requireFlags fails with a usage error if any of "names" was not passed.
func requireFlags(cmd *cobra.Command, names ...string) error {
	var missing []string
	for _, n := range names {
		if !cmd.Flags().Changed(n) {
			missing = append(missing, "--"+n)
		}
	}
	if len(missing) > 0 {
		return exitcodes.NewErr(fmt.Sprintf("missing required flag(s): %s. Try '%s %s --help'.",
			strings.Join(missing, ", "), tlog.ProgramName, cmd.Name()), exitcodes.Usage)
	}
	return nil
}

// prettyArgs pretty-prints the flags that were set on the command line.
// --packagekey is redacted.
func prettyArgs(cmd *cobra.Command) string {
	var out []string
	cmd.Flags().Visit(func(f *pflag.Flag) {
		v := f.Value.String()
		if f.Name == "packagekey" && v != "stdin" {
			v = "***"
		}
		out = append(out, fmt.Sprintf("--%s=%s", f.Name, v))
	})
	return "[" + strings.Join(out, " ") + "]"
}
