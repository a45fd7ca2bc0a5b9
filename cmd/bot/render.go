package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ivanoskov/itinerary_bot/internal/app"
	"github.com/ivanoskov/itinerary_bot/internal/config"
	"github.com/ivanoskov/itinerary_bot/internal/model"
)

// tripFile формат файла с маршрутом для команды render
type tripFile struct {
	Entries []model.ItineraryEntry `yaml:"entries"`
}

func loadTrip(path string) ([]model.ItineraryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trip file: %w", err)
	}

	var trip tripFile
	if err := yaml.Unmarshal(data, &trip); err != nil {
		return nil, fmt.Errorf("parse trip file: %w", err)
	}
	for i, e := range trip.Entries {
		if e.Date == "" || e.Place == "" {
			return nil, fmt.Errorf("entry %d: date and place are required", i+1)
		}
	}
	return trip.Entries, nil
}

func newRenderCmd() *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an itinerary YAML file into a PDF without running the bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			setupLogger(cfg.LogLevel)

			items, err := loadTrip(in)
			if err != nil {
				return err
			}

			renderer, err := app.NewRenderer(cfg)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()

			res, err := renderer.Render(f, items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries, %d pages\n", out, res.Entries, res.Pages)
			return f.Close()
		},
	}

	cmd.Flags().StringVar(&in, "in", "trip.yaml", "trip file with entries (date, place, memo)")
	cmd.Flags().StringVar(&out, "out", "itinerary.pdf", "output PDF path")
	return cmd
}
