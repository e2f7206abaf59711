package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"notekit/internal/config"
	"notekit/internal/store"
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Print the deduplicated flashcard decks",
	Long: `Materialize the deduplicated flashcard view: cards with identical
front/back text are collapsed into one record with their tag sets unioned,
then grouped into decks. The "all" deck always comes first and contains
every card; the remaining decks are listed alphabetically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}

		cards, err := st.Flashcards()
		if err != nil {
			return err
		}
		groups := store.DeckGroups(cards)
		if len(cards) == 0 {
			fmt.Println("no flashcards stored")
			return nil
		}

		for _, g := range groups {
			fmt.Printf("%s (%d)\n", g.Name, len(g.Cards))
			for _, c := range g.Cards {
				fmt.Printf("  Q: %s\n  A: %s\n", c.Front, c.Back)
				if len(c.Tags) > 0 {
					fmt.Printf("     tags=[%s]\n", strings.Join(c.Tags, ","))
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cardsCmd)
}
