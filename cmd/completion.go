package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/meteo/internal/model"
	"github.com/derickschaefer/meteo/internal/store"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Print a shell completion script for meteo.

Besides commands and flags, completion offers saved favorite IDs (with the
place name as description) for 'fav remove', 'weather --favorite' and
'chart --favorite', and the accepted values for 'settings set'.

  source <(meteo completion bash)
  source <(meteo completion zsh)
  meteo completion fish | source

Add the line to ~/.bashrc or ~/.zshrc, or save the fish output under
~/.config/fish/completions/meteo.fish, to keep it across sessions.`,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		root := cmd.Root()
		switch args[0] {
		case "zsh":
			return root.GenZshCompletion(out)
		case "fish":
			return root.GenFishCompletion(out, true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(out)
		default:
			return root.GenBashCompletionV2(out, true)
		}
	},
}

// completeFavoriteIDs offers "ID\tName, Country" for every saved favorite
// whose ID starts with toComplete. A missing or locked database yields no
// suggestions rather than an error.
func completeFavoriteIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	favs, err := savedFavorites()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return favoriteCompletions(favs, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func savedFavorites() ([]model.Favorite, error) {
	deps, err := buildDeps()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(deps.Config.DBPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	p, err := s.Load()
	if err != nil {
		return nil, err
	}
	return p.Favorites.Cities, nil
}

func favoriteCompletions(favs []model.Favorite, prefix string) []string {
	var out []string
	for _, f := range favs {
		id := strconv.FormatInt(f.ID, 10)
		if strings.HasPrefix(id, prefix) {
			out = append(out, id+"\t"+placeLabel(f.Name, f.Country))
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
