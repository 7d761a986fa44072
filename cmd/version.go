package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is overwritten at release time:
//
//	go build -ldflags "-X github.com/derickschaefer/meteo/cmd.Version=v0.2.0"
var Version = "v0.1.0"

// attribution is required by the Open-Meteo terms of use.
const attribution = "Weather data by Open-Meteo.com (CC BY 4.0)"

type versionInfo struct {
	Version     string `json:"version"`
	Commit      string `json:"commit,omitempty"`
	Modified    bool   `json:"modified,omitempty"`
	GoVersion   string `json:"go_version"`
	Platform    string `json:"platform"`
	Attribution string `json:"attribution"`
}

// buildVersion fills in what the binary knows about itself. The VCS fields
// are only present in binaries built from a git checkout.
func buildVersion() versionInfo {
	info := versionInfo{
		Version:     Version,
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		Attribution: attribution,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
			if len(info.Commit) > 12 {
				info.Commit = info.Commit[:12]
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the meteo version and build information",
	Example: `  meteo version
  meteo version --format json | jq -r .commit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildVersion()
		out := cmd.OutOrStdout()

		switch globalFlags.Format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		case "jsonl":
			return json.NewEncoder(out).Encode(info)
		}

		commit := info.Commit
		if commit == "" {
			commit = "(unknown)"
		} else if info.Modified {
			commit += " (modified)"
		}
		printKVTable(out, [][]string{
			{"meteo", info.Version},
			{"commit", commit},
			{"go", info.GoVersion},
			{"platform", info.Platform},
		})
		fmt.Fprintln(out)
		fmt.Fprintln(out, info.Attribution)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
