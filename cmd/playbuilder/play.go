package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/omarshaarawi/playbuilder/internal/builder"
	"github.com/omarshaarawi/playbuilder/internal/render"
	"github.com/omarshaarawi/playbuilder/internal/teams"
	"github.com/urfave/cli/v2"
)

func playFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "offense",
			Aliases: []string{"o"},
			Usage:   "Offense team code or name (default DEFAULT_OFFENSE)",
		},
		&cli.StringFlag{
			Name:    "defense",
			Aliases: []string{"d"},
			Usage:   "Defense team code or name (default DEFAULT_DEFENSE)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "table",
			Usage:   "Output format (table, json, yaml)",
		},
	}
	return append(flags, extra...)
}

func seedFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:  "seed",
		Usage: "Random seed; omit to let the service pick one",
	}
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Turn a free-text play description into a structured play spec",
		ArgsUsage: "<description>",
		Flags:     playFlags(),
		Action: func(c *cli.Context) error {
			ctl, err := parsePlay(c)
			if err != nil {
				return err
			}

			parsed := ctl.Snapshot().Parsed
			return writeOutput(c, parsed, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, render.PrettyJSON(parsed.Spec))
				return err
			})
		},
	}
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:      "simulate",
		Usage:     "Parse a play and simulate its outcome over many samples",
		ArgsUsage: "<description>",
		Flags: playFlags(
			&cli.IntFlag{
				Name:    "n",
				Aliases: []string{"samples"},
				Usage:   "Number of samples (default DEFAULT_SAMPLES)",
			},
			seedFlag(),
		),
		Action: func(c *cli.Context) error {
			ctl, err := parsePlay(c)
			if err != nil {
				return err
			}

			n := ctl.Snapshot().N
			if c.IsSet("n") {
				n = c.Int("n")
			}
			ctl.SetSampling(n, seedFrom(c))

			if err := ctl.RunSimulation(c.Context); err != nil {
				return err
			}

			sim := ctl.Snapshot().Sim
			return writeOutput(c, sim, func(w io.Writer) error {
				return render.WriteSimTable(w, sim)
			})
		},
	}
}

func driveCommand() *cli.Command {
	return &cli.Command{
		Name:      "drive",
		Usage:     "Parse a play and simulate one full drive from that situation",
		ArgsUsage: "<description>",
		Flags:     playFlags(seedFlag()),
		Action: func(c *cli.Context) error {
			ctl, err := parsePlay(c)
			if err != nil {
				return err
			}
			ctl.SetSampling(1, seedFrom(c))

			if err := ctl.RunDrive(c.Context); err != nil {
				return err
			}

			drive := ctl.Snapshot().Drive
			return writeOutput(c, drive, func(w io.Writer) error {
				return render.WriteDriveTable(w, drive)
			})
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check that the play service is reachable",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json, yaml)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			api := newAPI(cfg)
			report := api.Health(c.Context)
			err = writeOutput(c, report, func(w io.Writer) error {
				if !report.OK {
					_, err := fmt.Fprintf(w, "❌ %s is down: %s\n", api.BaseURL(), report.Error)
					return err
				}
				_, err := fmt.Fprintf(w, "✅ %s is up\n%s\n", api.BaseURL(), render.PrettyJSON(report.Payload))
				return err
			})
			if err != nil {
				return err
			}

			if !report.OK {
				return errors.New("play service is down")
			}
			return nil
		},
	}
}

func teamsCommand() *cli.Command {
	return &cli.Command{
		Name:      "teams",
		Usage:     "List team codes, optionally filtered by a fuzzy query",
		ArgsUsage: "[query]",
		Action: func(c *cli.Context) error {
			list := teams.All()
			if query := strings.Join(c.Args().Slice(), " "); query != "" {
				list = teams.Suggest(query)
			}

			tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			for _, t := range list {
				fmt.Fprintf(tw, "%s\t%s\n", t.Code, t.Name())
			}
			return tw.Flush()
		},
	}
}

// parsePlay sends the command's arguments to the parser and returns the
// controller holding the parsed spec. Parser warnings go to stderr.
func parsePlay(c *cli.Context) (*builder.Controller, error) {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return nil, errors.New("describe the play, e.g. \"3rd & 6 at BUF 35, shotgun pass short left\"")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	offense, defense := cfg.Defaults.Offense, cfg.Defaults.Defense
	if c.IsSet("offense") {
		offense = c.String("offense")
	}
	if c.IsSet("defense") {
		defense = c.String("defense")
	}
	offense, defense = teams.Resolve(offense), teams.Resolve(defense)

	ctl := builder.NewController(newAPI(cfg), offense, defense)
	ctl.SetSampling(cfg.Defaults.Samples, nil)
	ctl.SetInput(text, offense, defense)

	if err := ctl.SubmitParse(c.Context); err != nil {
		return nil, err
	}

	if warning := ctl.Snapshot().Warning; warning != "" {
		fmt.Fprintf(c.App.ErrWriter, "⚠️  %s\n", warning)
	}
	return ctl, nil
}

func seedFrom(c *cli.Context) *int64 {
	if !c.IsSet("seed") {
		return nil
	}
	seed := c.Int64("seed")
	return &seed
}

func writeOutput(c *cli.Context, v interface{}, table func(io.Writer) error) error {
	w := c.App.Writer

	switch format := c.String("format"); format {
	case "", "table":
		return table(w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		out, err := render.YAML(v)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
