package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"notekit/internal/config"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Inspect and manage stored notes",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored notes, most recently added first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}

		notes, err := st.Notes()
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			fmt.Println("no notes stored")
			return nil
		}
		for _, n := range notes {
			fmt.Printf("%s  %-30s  %-5s  tags=[%s]  cards=%d\n",
				n.ID, n.Title, n.Source, strings.Join(n.Tags, ","), len(n.Flashcards))
		}
		return nil
	},
}

var notesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print one note as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}

		notes, err := st.Notes()
		if err != nil {
			return err
		}
		for _, n := range notes {
			if n.ID == args[0] {
				out, err := json.MarshalIndent(n, "", "  ")
				if err != nil {
					return err
				}
				os.Stdout.Write(out)
				fmt.Println()
				return nil
			}
		}
		return fmt.Errorf("note %s not found", args[0])
	},
}

var notesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note and its matching flashcards",
	Long: `Delete the note with the given identifier. Flashcards whose
front/back pair matches one embedded in the deleted note are removed from
the flashcard collection as well.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		if err := st.DeleteNote(args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

var notesTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Print the derived tag index",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		tags, err := st.TagIndex()
		if err != nil {
			return err
		}
		for _, t := range tags {
			fmt.Println(t)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesShowCmd)
	notesCmd.AddCommand(notesDeleteCmd)
	notesCmd.AddCommand(notesTagsCmd)
}
