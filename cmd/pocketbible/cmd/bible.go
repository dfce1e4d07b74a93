package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/pocketbible/internal/books"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

type verseJSON struct {
	Ref   string `json:"ref"`
	Verse uint16 `json:"verse,omitempty"`
	Text  string `json:"text"`
}

type chapterJSON struct {
	Ref    string      `json:"ref"`
	Verses []verseJSON `json:"verses"`
}

func newVerseCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "verse <reference>",
		Short: "Print one verse",
		Example: `  pocketbible verse John 3:16
  pocketbible verse 1 john 4.8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := books.ParseRef(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if ref.Verse == 0 {
				return bberrors.ValidationError(fmt.Sprintf("%s names a whole chapter", ref), nil).
					WithSuggestion("Use 'pocketbible chapter " + ref.String() + "' to print it")
			}

			store, err := e.verses()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			text, err := store.Text(ref.Book, ref.Chapter, ref.Verse)
			if err != nil {
				return err
			}

			if ok, err := e.emit(cmd, verseJSON{Ref: ref.String(), Text: text}); ok {
				return err
			}
			e.out(cmd).Section(ref.String(), text)
			return nil
		},
	}
}

func newChapterCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "chapter <book> <chapter>",
		Short:   "Print a whole chapter",
		Example: `  pocketbible chapter Genesis 1`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := books.ParseRef(strings.Join(args, " "))
			if err != nil {
				return err
			}
			ref.Verse = 0

			store, err := e.verses()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n := store.VerseCount(ref.Book, ref.Chapter)
			if n == 0 {
				if err := store.LastError(); err != nil {
					return err
				}
				return bberrors.New(bberrors.ErrCodeInvalidReference, ref.String()+" has no verses in these assets", nil)
			}

			result := chapterJSON{Ref: ref.String()}
			for v := 1; v <= n; v++ {
				text, err := store.Text(ref.Book, ref.Chapter, uint16(v))
				if err != nil {
					e.log().Warn("verse unreadable",
						slog.String("ref", fmt.Sprintf("%s:%d", ref, v)),
						bberrors.LogAttr(err))
					continue
				}
				result.Verses = append(result.Verses, verseJSON{Verse: uint16(v), Text: text})
			}

			if ok, err := e.emit(cmd, result); ok {
				return err
			}
			w := e.out(cmd)
			w.Heading(result.Ref)
			for _, v := range result.Verses {
				w.Verse(int(v.Verse), v.Text)
			}
			return nil
		},
	}
}

type bookJSON struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Chapters uint16 `json:"chapters"`
}

func newBooksCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List the books of the canon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := make([]bookJSON, 0, books.Count)
			for i, name := range books.Names() {
				list = append(list, bookJSON{Index: i, Name: name, Chapters: books.Chapters(uint8(i))})
			}

			if ok, err := e.emit(cmd, list); ok {
				return err
			}
			w := e.out(cmd)
			for _, b := range list {
				w.KeyValue(b.Name, fmt.Sprintf("%d chapters", b.Chapters))
			}
			return nil
		},
	}
}
