// ABOUTME: CLI commands for the theme shop.
// ABOUTME: Lists themes, buys them with points, and equips owned themes.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/tribe/internal/models"
	"github.com/spf13/cobra"
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Spend points on themes",
	Long: `Spend points on cosmetic themes.

COMMANDS:

  list          Show themes, prices, and what you own
  buy <theme>   Buy and equip a theme (equips without charging if owned)
  equip <theme> Switch to a theme you already own`,
}

var shopListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show themes and prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		var state *models.UserGamificationState
		if profile, err := currentProfile(); err == nil {
			if state, err = engine.State(cmd.Context(), profile); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)
		for _, t := range models.Themes {
			mark := " "
			note := fmt.Sprintf("%d pts", t.Price)
			if state != nil {
				switch {
				case state.ActiveTheme == t.ID:
					mark = color.GreenString("●")
					note = "equipped"
				case state.HasTheme(t.ID):
					mark = color.GreenString("✓")
					note = "owned"
				}
			}
			fmt.Fprintf(out, "%s %s %s %s\n", mark, padRight(t.ID, 10), padRight(t.Name, 16), faint.Sprint(note))
		}
		if state != nil {
			fmt.Fprintf(out, "\nYou have %d points\n", state.Points)
		}
		return nil
	},
}

var shopBuyCmd = &cobra.Command{
	Use:   "buy <theme>",
	Short: "Buy and equip a theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := currentProfile()
		if err != nil {
			return err
		}
		state, err := engine.PurchaseTheme(cmd.Context(), profile, args[0])
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Equipped %s (%d points left)\n", state.ActiveTheme, state.Points)
		return nil
	},
}

var shopEquipCmd = &cobra.Command{
	Use:   "equip <theme>",
	Short: "Equip a theme you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := currentProfile()
		if err != nil {
			return err
		}
		state, err := engine.EquipTheme(cmd.Context(), profile, args[0])
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Equipped %s\n", state.ActiveTheme)
		return nil
	},
}

func init() {
	shopCmd.AddCommand(shopListCmd, shopBuyCmd, shopEquipCmd)
	rootCmd.AddCommand(shopCmd)
}
