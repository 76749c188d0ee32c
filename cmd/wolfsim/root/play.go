package root

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"wolfbot/internal/app"
	"wolfbot/internal/bot"
	"wolfbot/internal/domain"
	"wolfbot/internal/sim"
	"wolfbot/internal/ui"
)

func newPlayCmd() *cobra.Command {
	opts := sim.DefaultOptions()
	var level, setup string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play bot games and summarize the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := bot.ParseLevel(level)
			if err != nil {
				return err
			}
			opts.Level = lvl
			mode, ok := domain.ParseMode(setup)
			if !ok {
				return fmt.Errorf("unknown setup %q (want one of %s)", setup, modeNames())
			}
			opts.Mode = mode
			if opts.Players < domain.MinPlayers || opts.Players > domain.MaxPlayers {
				return fmt.Errorf("players must be between %d and %d", domain.MinPlayers, domain.MaxPlayers)
			}

			out := cmd.OutOrStdout()
			if verbose {
				var mu sync.Mutex
				opts.OnEvent = func(game int, ev app.Event) {
					mu.Lock()
					defer mu.Unlock()
					if line := describe(ev); line != "" {
						fmt.Fprintf(out, "%s %s\n", ui.Muted.Render(fmt.Sprintf("[game %d]", game)), line)
					}
				}
			}

			results, err := sim.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printResults(out, opts, results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Players, "players", "p", opts.Players, "players per game")
	cmd.Flags().IntVarP(&opts.Games, "games", "n", opts.Games, "number of games")
	cmd.Flags().Int64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", opts.Parallel, "games played at once")
	cmd.Flags().StringVar(&level, "level", opts.Level.String(), "bot level (easy, smart)")
	cmd.Flags().StringVar(&setup, "setup", string(opts.Mode), "game mode: "+modeNames())
	cmd.Flags().DurationVar(&opts.Day, "day", opts.Day, "day length")
	cmd.Flags().DurationVar(&opts.Night, "night", opts.Night, "night length")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout, "limit for a single game")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print public game events")
	return cmd
}

// describe renders the public events worth following in verbose mode.
func describe(ev app.Event) string {
	if ev.Private() {
		return ""
	}
	switch p := ev.Payload.(type) {
	case app.PhaseStartedPayload:
		if p.Phase == domain.PhaseNight {
			return ui.H2.Render(fmt.Sprintf("%s night %d", ui.IconMoon, p.Number))
		}
		return ui.H2.Render(fmt.Sprintf("%s day %d", ui.IconSun, p.Number))
	case app.Death:
		line := fmt.Sprintf("%s player %d died (%s)", ui.IconSkull, p.Victim, p.Cause)
		if p.Role != "" {
			line += " and was a " + string(p.Role)
		}
		return ui.Bad.Render(line)
	case app.ShotFiredPayload:
		if p.Hit {
			return fmt.Sprintf("player %d shot player %d", p.Shooter, p.Target)
		}
		return fmt.Sprintf("player %d shot at player %d and missed", p.Shooter, p.Target)
	case app.RoleRevealedPayload:
		return fmt.Sprintf("%s player %d revealed as %s", ui.IconCrown, p.Player, strings.TrimSpace(string(p.Role)+" "+p.Template))
	case app.GameEndedPayload:
		return ui.Title.Render(fmt.Sprintf("%s %s wins: %s", ui.IconWolf, p.Outcome.Faction, p.Outcome.Reason))
	}
	return ""
}

func printResults(out io.Writer, opts sim.Options, results []sim.Result) {
	sum := sim.Summarize(results)

	fmt.Fprintln(out, ui.Heading(ui.IconScroll, fmt.Sprintf("%d %s games, %d %s bots each", sum.Games, opts.Mode, opts.Players, opts.Level)))
	for _, r := range results {
		fmt.Fprintf(out, "- game %-3d %-8s %s %s\n", r.Game, ui.Faction(r.Outcome.Faction),
			ui.Muted.Render(fmt.Sprintf("after %d days, %d deaths", r.Days, r.Deaths)), r.Outcome.Reason)
	}
	fmt.Fprintln(out, "")

	factions := make([]domain.Faction, 0, len(sum.Wins))
	for f := range sum.Wins {
		factions = append(factions, f)
	}
	sort.Slice(factions, func(i, j int) bool { return sum.Wins[factions[i]] > sum.Wins[factions[j]] })

	var lines []string
	for _, f := range factions {
		pct := 100 * float64(sum.Wins[f]) / float64(sum.Games)
		lines = append(lines, fmt.Sprintf("%s %d (%.0f%%)", ui.Faction(f), sum.Wins[f], pct))
	}
	lines = append(lines,
		ui.LabelValue("Average days", fmt.Sprintf("%.1f", sum.AvgDays)),
		ui.LabelValue("Average deaths", fmt.Sprintf("%.1f", sum.AvgDeaths)),
	)
	if sum.Fallbacks > 0 {
		lines = append(lines, ui.Warn.Render(fmt.Sprintf("%d games used the fallback setup", sum.Fallbacks)))
	}
	fmt.Fprintln(out, ui.Panel.Render(strings.Join(lines, "\n")))
}
