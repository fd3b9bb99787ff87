package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/sim"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the encounter as fast as possible and print a summary",
	Long: `Populates every encounter group, steps the world at the configured
tick rate for --duration of simulation time, then prints the tally and the
final state of every combatant.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetDuration("duration")
		if duration <= 0 {
			return fmt.Errorf("--duration must be > 0, got %s", duration)
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		h, err := newHost(cfg)
		if err != nil {
			return err
		}
		defer h.Close()

		start := time.Now()
		h.world.Populate()
		h.world.RunFor(duration)
		h.logger.Info("simulation finished",
			zap.Duration("wall", time.Since(start)),
			zap.Duration("sim", h.world.Now()),
		)
		return printSummary(cmd.OutOrStdout(), h.world)
	},
}

func init() {
	simulateCmd.Flags().DurationP("duration", "d", time.Minute, "simulation time to run")
	simulateCmd.Flags().Uint64("seed", 0, "deterministic dice seed (0 draws from crypto/rand)")
	rootCmd.AddCommand(simulateCmd)
}

func printSummary(out io.Writer, w *sim.World) error {
	t := w.Tally()
	fmt.Fprintf(out, "simulated %s\n", w.Now())
	fmt.Fprintf(out, "spawns %d  deaths %d  hits %d  criticals %d  guarded %d  evaded %d  damage %.1f\n\n",
		t.Spawns, t.Deaths, t.Hits, t.Criticals, t.Guarded, t.Evaded, t.Damage)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTEAM\tGROUP\tHP\tSP\tX\tY\tDECISION\tSTATE")
	for _, e := range w.Entities() {
		v := e.View()
		state := "alive"
		if v.Dead {
			state = "dead"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f/%.0f\t%.0f\t%.0f\t%.0f\t%s\t%s\n",
			v.Name, v.Team, v.Group, v.HP, v.MaxHP, v.SP, v.Location.X, v.Location.Y, v.Decision, state)
	}
	return tw.Flush()
}
