package builder

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/Aman-CERP/pocketbible/internal/assets"
	"github.com/Aman-CERP/pocketbible/internal/books"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
	"github.com/Aman-CERP/pocketbible/internal/verse"
)

// Verse is one verse of source text. Its position in the slice returned by
// LoadVerses is its verse id.
type Verse struct {
	Book    uint8
	Chapter uint16
	Verse   uint16
	Text    string
}

// BibleSource is the JSON Bible layout: books in canon order, chapters keyed
// by number, verses numbered from 1 by position.
type BibleSource struct {
	Books []struct {
		Name     string              `json:"name"`
		Chapters map[string][]string `json:"chapters"`
	} `json:"books"`
}

// LoadVerses reads a Bible source: .json, .json.xz, or a SQLite database
// with a verses(book, chapter, verse, text) table where book is the 0-based
// canon index.
func LoadVerses(ctx context.Context, path string) ([]Verse, error) {
	if isSQLite(path) {
		return loadSQLite(ctx, path)
	}

	var src BibleSource
	if err := decodeJSON(path, &src); err != nil {
		return nil, err
	}
	if len(src.Books) == 0 {
		return nil, bberrors.New(bberrors.ErrCodeInvalidSource, "no 'books' in source JSON: "+path, nil)
	}
	if len(src.Books) > books.Count {
		return nil, bberrors.Newf(bberrors.ErrCodeInvalidSource,
			"%s: %d books exceeds the %d-book canon", path, len(src.Books), books.Count)
	}

	var out []Verse
	prev := -1
	for pos, book := range src.Books {
		id, err := bookID(path, pos, prev, book.Name)
		if err != nil {
			return nil, err
		}
		prev = int(id)

		chapters := make([]int, 0, len(book.Chapters))
		for key := range book.Chapters {
			n, err := strconv.Atoi(key)
			if err != nil || n < 1 || n > 0xFFFF {
				return nil, bberrors.Newf(bberrors.ErrCodeInvalidSource,
					"%s: book %q has invalid chapter key %q", path, book.Name, key)
			}
			chapters = append(chapters, n)
		}
		sort.Ints(chapters)

		for _, ch := range chapters {
			for i, text := range book.Chapters[strconv.Itoa(ch)] {
				out = append(out, Verse{
					Book:    uint8(id),
					Chapter: uint16(ch),
					Verse:   uint16(i + 1),
					Text:    strings.TrimSpace(text),
				})
			}
		}
	}
	return out, nil
}

// bookID resolves a source book to its canon index. An unnamed book takes
// its list position. Ids must strictly increase so verse ids stay in canon order.
func bookID(path string, pos, prev int, name string) (uint8, error) {
	id := pos
	if strings.TrimSpace(name) != "" {
		found, ok := books.Lookup(name)
		if !ok {
			return 0, bberrors.Newf(bberrors.ErrCodeInvalidSource,
				"%s: unknown book %q", path, name).
				WithSuggestion("Use canon book names such as \"Genesis\" or \"1 Corinthians\"")
		}
		id = int(found)
	}
	if id <= prev {
		return 0, bberrors.Newf(bberrors.ErrCodeInvalidSource,
			"%s: book %q at position %d is out of canon order", path, name, pos)
	}
	return uint8(id), nil
}

func loadSQLite(ctx context.Context, path string) ([]Verse, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, bberrors.New(bberrors.ErrCodeInvalidSource, "source not found: "+path, err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, bberrors.IOFailure("open", path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT book, chapter, verse, text FROM verses ORDER BY book, chapter, verse`)
	if err != nil {
		return nil, bberrors.New(bberrors.ErrCodeInvalidSource, "cannot query verses table: "+path, err)
	}
	defer rows.Close()

	var out []Verse
	for rows.Next() {
		var book, chapter, v int
		var text string
		if err := rows.Scan(&book, &chapter, &v, &text); err != nil {
			return nil, bberrors.New(bberrors.ErrCodeInvalidSource, "cannot scan verse row", err)
		}
		if book < 0 || book >= books.Count || chapter < 1 || chapter > 0xFFFF || v < 1 || v > 0xFFFF {
			return nil, bberrors.Newf(bberrors.ErrCodeInvalidSource,
				"%s: invalid verse row (%d, %d, %d)", path, book, chapter, v)
		}
		out = append(out, Verse{
			Book:    uint8(book),
			Chapter: uint16(chapter),
			Verse:   uint16(v),
			Text:    strings.TrimSpace(text),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, bberrors.IOFailure("read", path, err)
	}
	if len(out) == 0 {
		return nil, bberrors.New(bberrors.ErrCodeInvalidSource, "no verses in "+path, nil)
	}
	return out, nil
}

// BuildBible writes bible_text.bin and verse_index.bin.
func (b *Builder) BuildBible(verses []Verse) error {
	var text strings.Builder
	records := make([]verse.Record, 0, len(verses))

	for _, v := range verses {
		if len(v.Text) > 0xFFFF {
			ref := books.Ref{Book: v.Book, Chapter: v.Chapter, Verse: v.Verse}
			return bberrors.Newf(bberrors.ErrCodeInvalidSource,
				"%s: text is %d bytes, limit is 65535", ref, len(v.Text))
		}
		if uint64(text.Len())+uint64(len(v.Text)) > 0xFFFFFFFF {
			return bberrors.Newf(bberrors.ErrCodeInvalidSource, "text blob exceeds 4 GiB")
		}
		records = append(records, verse.Record{
			TextOffset: uint32(text.Len()),
			TextLen:    uint16(len(v.Text)),
			Book:       v.Book,
			Chapter:    v.Chapter,
			Verse:      v.Verse,
		})
		text.WriteString(v.Text)
	}

	if err := b.writeFile(assets.TextFile, []byte(text.String())); err != nil {
		return err
	}
	if err := b.writeFile(assets.IndexFile, verse.EncodeIndex(records)); err != nil {
		return err
	}
	b.logger.Info("bible assets written",
		slog.Int("verses", len(records)),
		slog.Int("text_bytes", text.Len()))
	return nil
}
