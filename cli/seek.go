package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/replay/internal/config"
	"github.com/xiaot623/gogo/replay/internal/domain"
	"github.com/xiaot623/gogo/replay/internal/replay"
)

type seekOutput struct {
	StartDatetime   string                  `json:"start_datetime"`
	Frame           int                     `json:"frame"`
	Step            int                     `json:"step"`
	SpeedMultiplier int                     `json:"speed_multiplier"`
	Clamped         bool                    `json:"clamped,omitempty"`
	PersonaInitPos  map[string]domain.Coord `json:"persona_init_pos"`
}

func newSeekCmd() *cobra.Command {
	var (
		movementFile  string
		step          int
		speed         int
		framesPerStep int
	)

	cmd := &cobra.Command{
		Use:   "seek",
		Short: "Print the playback position of a movement log at a logical step",
		RunE: func(cmd *cobra.Command, args []string) error {
			if framesPerStep <= 0 {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				framesPerStep = cfg.FramesPerStep
			}

			l, err := replay.LoadMovementLog(movementFile, framesPerStep)
			if err != nil {
				return err
			}
			p, err := replay.Seek(l, step, speed)
			if err != nil {
				return err
			}

			out := seekOutput{
				StartDatetime:   p.StartDatetime,
				Frame:           p.Frame,
				Step:            p.Step,
				SpeedMultiplier: p.SpeedMultiplier,
				Clamped:         p.Clamped,
				PersonaInitPos:  p.PersonaInitPos,
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&movementFile, "movement", "", "compressed movement log")
	flags.IntVar(&step, "step", 1, "1-based logical step")
	flags.IntVar(&speed, "speed", replay.DefaultSpeed, "speed level 0-5")
	flags.IntVar(&framesPerStep, "frames-per-step", 0, "frames per step when the log does not say")
	cmd.MarkFlagRequired("movement")

	return cmd
}
