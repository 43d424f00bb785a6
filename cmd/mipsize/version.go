package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/pevans/mipsize/autosize"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = ""
	commit  = ""
)

// buildSetting looks up key in the embedded build info.
func buildSetting(key string) (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	if key == "main.version" {
		return info.Main.Version, info.Main.Version != ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value, setting.Value != ""
		}
	}
	return "", false
}

func getVersion() string {
	if version != "" {
		return version
	}
	if v, ok := buildSetting("main.version"); ok {
		return v
	}
	return "(devel)"
}

func getCommit() string {
	if commit != "" {
		return commit
	}
	rev, ok := buildSetting("vcs.revision")
	if !ok {
		return "unknown"
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if dirty, _ := buildSetting("vcs.modified"); dirty == "true" {
		rev += "-dirty"
	}
	return rev
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Version prints the mipsize release, the commit it was built from, the Go
toolchain, and the catalog queried when no catalog URL is configured.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mipsize version %s\n", getVersion())
			fmt.Fprintf(out, "  commit:  %s\n", getCommit())
			fmt.Fprintf(out, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(out, "  catalog: %s\n", autosize.DefaultCatalogURL)
		},
	}
}
