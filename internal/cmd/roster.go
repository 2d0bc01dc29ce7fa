package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/atikulmunna/deskwatch/internal/classify"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var rosterFormat string

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Print the initial desk roster",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeRoster(cmd.OutOrStdout(), rosterFormat)
	},
}

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Print the resolved watch root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.Root)
		return nil
	},
}

func init() {
	rosterCmd.Flags().StringVarP(&rosterFormat, "format", "f", "yaml", "roster format: yaml, json")
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(homeCmd)
}

// rosterDesk is the printable form of one desk.
type rosterDesk struct {
	ID       string     `json:"id" yaml:"id"`
	Label    string     `json:"label" yaml:"label"`
	Status   string     `json:"status" yaml:"status"`
	Position [2]float64 `json:"desk_position" yaml:"desk_position,flow"`
}

func writeRoster(w io.Writer, format string) error {
	roster := classify.Roster()
	desks := make([]rosterDesk, 0, len(roster))
	for _, s := range roster {
		desks = append(desks, rosterDesk{
			ID:       s.ID,
			Label:    s.Category.Label(),
			Status:   s.Status.String(),
			Position: [2]float64{s.Position.X, s.Position.Y},
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(desks)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(desks); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown roster format %q: want yaml or json", format)
	}
}
