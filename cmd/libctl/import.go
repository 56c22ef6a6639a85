package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/MPfria02/Library-Management-System-sub001/db"
	"github.com/MPfria02/Library-Management-System-sub001/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML shape accepted by `libctl import`.
type catalogFile struct {
	Books []catalogBook `yaml:"books"`
}

type catalogBook struct {
	ISBN   string `yaml:"isbn"`
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Copies int    `yaml:"copies"`
}

var importCmd = &cobra.Command{
	Use:   "import <catalog.yaml>",
	Short: "Import a YAML book catalog into the database",
	Long: `Import reads a YAML catalog and upserts one book per entry:

    books:
      - isbn: "9780134190440"
        title: "The Go Programming Language"
        author: "Donovan & Kernighan"
        copies: 3

New ISBNs are created. Existing ISBNs get their title/author refreshed
and their copy count re-based; a shrink below the number of copies
currently on loan is refused and reported as an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}
		var cat catalogFile
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return fmt.Errorf("parse catalog: %w", err)
		}
		if len(cat.Books) == 0 {
			return errors.New("catalog has no books")
		}

		ctx := cmd.Context()
		created, updated, skipped, failed := 0, 0, 0, 0
		for _, entry := range cat.Books {
			if entry.ISBN == "" || entry.Title == "" || entry.Author == "" || entry.Copies <= 0 {
				fmt.Printf("SKIP   %-16s invalid entry (isbn/title/author/copies required)\n", entry.ISBN)
				skipped++
				continue
			}
			book := &models.Book{
				ID:              uuid.NewString(),
				ISBN:            entry.ISBN,
				Title:           entry.Title,
				Author:          entry.Author,
				TotalCopies:     entry.Copies,
				AvailableCopies: entry.Copies,
			}
			err := store.CreateBook(ctx, book)
			switch {
			case err == nil:
				fmt.Printf("OK     %-16s %q x%d\n", entry.ISBN, entry.Title, entry.Copies)
				created++
			case errors.Is(err, db.ErrDuplicateISBN):
				if uerr := refreshExisting(ctx, entry); uerr != nil {
					fmt.Printf("ERROR  %-16s %v\n", entry.ISBN, uerr)
					failed++
				} else {
					fmt.Printf("UPDATE %-16s %q x%d\n", entry.ISBN, entry.Title, entry.Copies)
					updated++
				}
			default:
				fmt.Printf("ERROR  %-16s %v\n", entry.ISBN, err)
				failed++
			}
		}

		fmt.Printf("\nimport done: %d created, %d updated, %d skipped, %d failed\n",
			created, updated, skipped, failed)
		if failed > 0 {
			return fmt.Errorf("%d entries failed", failed)
		}
		return nil
	},
}

// refreshExisting re-applies a catalog entry on top of a book that is
// already registered under the same ISBN. Copy counts go through the
// guarded resize, so shrinking below the on-loan count fails here.
func refreshExisting(ctx context.Context, entry catalogBook) error {
	existing, err := store.FindBookByISBN(ctx, entry.ISBN)
	if err != nil {
		return err
	}
	if existing.Title != entry.Title || existing.Author != entry.Author {
		if _, err := store.UpdateBookDetails(ctx, existing.ID, entry.Title, entry.Author); err != nil {
			return err
		}
	}
	if existing.TotalCopies != entry.Copies {
		if _, err := store.ResizeBookCopies(ctx, existing.ID, entry.Copies); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(importCmd)
}
