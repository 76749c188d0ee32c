package root

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/spf13/cobra"

	"wolfbot/internal/domain"
	"wolfbot/internal/ui"
)

func newSetupsCmd() *cobra.Command {
	var setup string
	var seed int64

	cmd := &cobra.Command{
		Use:   "setups",
		Short: "Show the role table of a game mode for every supported player count",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, ok := domain.ParseMode(setup)
			if !ok {
				return fmt.Errorf("unknown setup %q (want one of %s)", setup, modeNames())
			}
			rng := rand.New(rand.NewSource(seed))

			out := cmd.OutOrStdout()
			title := fmt.Sprintf("Role setups: %s", mode)
			if mode == domain.ModeRandom {
				title += " (one sample per count)"
			}
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, title))
			for n := domain.MinPlayers; n <= domain.MaxPlayers; n++ {
				row, err := domain.SetupFor(mode, n, rng)
				if err != nil && !errors.Is(err, domain.ErrUnsupportedConfiguration) {
					return err
				}
				line := fmt.Sprintf("%s %s", ui.Key.Render(fmt.Sprintf("%2d", n)), countRoles(row.Roles))
				if len(row.Templates) > 0 {
					names := make([]string, len(row.Templates))
					for i, t := range row.Templates {
						names[i] = t.String()
					}
					line += " " + ui.Muted.Render("+ "+strings.Join(names, ", "))
				}
				if row.Fallback {
					line += " " + ui.Warn.Render("(fallback)")
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&setup, "setup", string(domain.ModeDefault), "game mode: "+modeNames())
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for the random mode")
	return cmd
}

func modeNames() string {
	modes := domain.Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func countRoles(roles []domain.RoleName) string {
	counts := map[domain.RoleName]int{}
	var order []domain.RoleName
	for _, r := range roles {
		if counts[r] == 0 {
			order = append(order, r)
		}
		counts[r]++
	}
	parts := make([]string, len(order))
	for i, r := range order {
		if counts[r] > 1 {
			parts[i] = fmt.Sprintf("%d %s", counts[r], r)
		} else {
			parts[i] = string(r)
		}
	}
	return strings.Join(parts, ", ")
}
