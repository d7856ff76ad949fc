package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agiledecrypt/agiledecrypt/internal/speed"
	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

const (
	gitVersionNotSet = "[GitVersion not set - please compile with -ldflags \"-X main.GitVersion=...\"]"
	buildDateNotSet  = "0000-00-00"
)

var (
	// GitVersion is the agiledecrypt version according to git, set via -ldflags
	GitVersion = gitVersionNotSet
	// BuildDate is a date string like "2017-09-06", set via -ldflags
	BuildDate = buildDateNotSet
)

func init() {
	versionFromBuildInfo()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func newSpeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "speed",
		Short: "Run crypto speed test",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
			speed.Run()
		},
	}
}

// printVersion prints a version string like this:
// agiledecrypt v1.2-3-gcf99cfd; 2019-05-12 go1.23.4 linux/amd64
func printVersion(w io.Writer) {
	built := fmt.Sprintf("%s %s", BuildDate, runtime.Version())
	fmt.Fprintf(w, "%s %s; %s %s/%s\n",
		tlog.ProgramName, GitVersion, built,
		runtime.GOOS, runtime.GOARCH)
}

// versionFromBuildInfo tries to get some information out of the information baked in
// by the Go compiler. Values set via -ldflags are kept.
func versionFromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		tlog.Debug.Println("versionFromBuildInfo: ReadBuildInfo() failed")
		return
	}
	// Parse BuildSettings
	var vcsRevision, vcsTime string
	var vcsModified bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			vcsRevision = s.Value
		case "vcs.time":
			vcsTime = s.Value
		case "vcs.modified":
			vcsModified, _ = strconv.ParseBool(s.Value)
		}
	}
	// Fill our version strings
	if GitVersion == gitVersionNotSet {
		GitVersion = info.Main.Version
		if GitVersion == "(devel)" && vcsRevision != "" {
			GitVersion = fmt.Sprintf("vcs.revision=%s", vcsRevision)
		}
		if vcsModified {
			GitVersion += "-dirty"
		}
	}
	if BuildDate == buildDateNotSet {
		if vcsTime != "" {
			BuildDate = fmt.Sprintf("vcs.time=%s", vcsTime)
		}
	}
}
