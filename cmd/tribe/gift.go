// ABOUTME: CLI command for giving held gift items to tribe mates.
// ABOUTME: Lists recent tribe gifts with --list.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/tribe/internal/models"
	"github.com/spf13/cobra"
)

var giftList bool

var giftCmd = &cobra.Command{
	Use:   "gift [<to> <item>]",
	Short: "Give a gift item to a tribe mate",
	Long: `Give one of your gift items to another tribe member. Items are
earned one at a time with each badge you unlock.

ITEMS:

  fist_bump   protein   fire   medal

EXAMPLES:

  tribe gift bob fire
  tribe gift --list          # recent gifts in your tribe`,
	Args: func(cmd *cobra.Command, args []string) error {
		if giftList {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := currentProfile()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if giftList {
			gifts, err := repo.ListGifts(cmd.Context(), profile.TribeID, 20)
			if err != nil {
				return fmt.Errorf("failed to list gifts: %w", err)
			}
			if len(gifts) == 0 {
				fmt.Fprintln(out, "No gifts yet.")
				return nil
			}
			faint := color.New(color.Faint)
			for _, g := range gifts {
				item, _ := models.GiftByID(g.GiftID)
				fmt.Fprintf(out, "%s %s → %s %s %s\n",
					faint.Sprint(g.CreatedAt.In(engine.Location()).Format("2006-01-02 15:04")),
					g.From, g.To, item.Emoji, item.Name)
			}
			return nil
		}

		tx, err := engine.SendGift(cmd.Context(), profile, args[0], args[1])
		if err != nil {
			return err
		}
		item, _ := models.GiftByID(tx.GiftID)
		color.New(color.FgGreen).Fprintf(out, "✓ Sent %s %s to %s\n", item.Emoji, item.Name, tx.To)
		return nil
	},
}

func init() {
	giftCmd.Flags().BoolVar(&giftList, "list", false, "list recent gifts in your tribe")
	rootCmd.AddCommand(giftCmd)
}
