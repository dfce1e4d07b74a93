// Package books holds the 73-book Catholic canon and parses textual verse
// references such as "John 3:16" or "1 Cor 13".
package books

import (
	"fmt"
	"strconv"
	"strings"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

// Count is the number of books in the canon.
const Count = 73

// OldTestamentCount is the number of Old Testament books; New Testament ids
// start here.
const OldTestamentCount = 46

var names = [Count]string{
	"Genesis", "Exodus", "Leviticus", "Numbers", "Deuteronomy",
	"Joshua", "Judges", "Ruth",
	"1 Samuel", "2 Samuel", "1 Kings", "2 Kings",
	"1 Chronicles", "2 Chronicles", "Ezra", "Nehemiah",
	"Tobit", "Judith", "Esther",
	"1 Maccabees", "2 Maccabees",
	"Job", "Psalms", "Proverbs", "Ecclesiastes", "Song of Songs",
	"Wisdom", "Sirach",
	"Isaiah", "Jeremiah", "Lamentations", "Baruch", "Ezekiel", "Daniel",
	"Hosea", "Joel", "Amos", "Obadiah", "Jonah", "Micah", "Nahum", "Habakkuk",
	"Zephaniah", "Haggai", "Zechariah", "Malachi",

	"Matthew", "Mark", "Luke", "John", "Acts",
	"Romans", "1 Corinthians", "2 Corinthians", "Galatians", "Ephesians", "Philippians", "Colossians",
	"1 Thessalonians", "2 Thessalonians",
	"1 Timothy", "2 Timothy", "Titus", "Philemon",
	"Hebrews", "James", "1 Peter", "2 Peter", "1 John", "2 John", "3 John", "Jude", "Revelation",
}

var chapterCounts = [Count]uint16{
	50, 40, 27, 36, 34,
	24, 21, 4,
	31, 24, 22, 25,
	29, 36, 10, 13,
	14, 16, 16, // Esther with additions
	16, 15,
	42, 150, 31, 12, 8,
	19, 51,
	66, 52, 5, 6, 48, 14,
	14, 3, 9, 1, 4, 7, 3, 3,
	3, 2, 14, 4,

	28, 16, 24, 21, 28,
	16, 16, 13, 6, 6, 4, 4,
	5, 3,
	6, 4, 3, 1,
	13, 5, 5, 3, 5, 1, 1, 1, 22,
}

// Ref identifies a verse. Book is the 0-based canon index; Chapter and Verse
// are 1-based. Verse 0 means "whole chapter".
type Ref struct {
	Book    uint8
	Chapter uint16
	Verse   uint16
}

// String formats the reference as "Book C:V" or "Book C".
func (r Ref) String() string {
	if r.Verse == 0 {
		return fmt.Sprintf("%s %d", Name(r.Book), r.Chapter)
	}
	return fmt.Sprintf("%s %d:%d", Name(r.Book), r.Chapter, r.Verse)
}

// Name returns the book's display name, or "" for an out-of-range id.
func Name(id uint8) string {
	if int(id) >= Count {
		return ""
	}
	return names[id]
}

// Chapters returns the number of chapters in a book, or 0 for an
// out-of-range id.
func Chapters(id uint8) uint16 {
	if int(id) >= Count {
		return 0
	}
	return chapterCounts[id]
}

// Names returns the canon in order.
func Names() []string {
	out := make([]string, Count)
	copy(out, names[:])
	return out
}

// Lookup resolves a book name. Matching ignores case and spaces, and accepts
// any prefix that identifies exactly one book ("gen", "1cor", "song").
// An exact match always wins over a prefix match, so "john" is John rather
// than ambiguous with 1 John.
func Lookup(name string) (uint8, bool) {
	key := fold(name)
	if key == "" {
		return 0, false
	}
	match := -1
	for i, n := range names {
		f := fold(n)
		if f == key {
			return uint8(i), true
		}
		if strings.HasPrefix(f, key) {
			if match == -1 {
				match = i
			} else {
				match = -2
			}
		}
	}
	if match < 0 {
		return 0, false
	}
	return uint8(match), true
}

// ParseRef parses "Book C", "Book C:V" or "Book C.V".
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	sp := strings.LastIndexByte(s, ' ')
	if sp <= 0 {
		return Ref{}, bberrors.ValidationError(fmt.Sprintf("invalid reference %q: expected \"Book chapter[:verse]\"", s), nil)
	}
	bookPart, numPart := s[:sp], s[sp+1:]

	book, ok := Lookup(bookPart)
	if !ok {
		return Ref{}, bberrors.ValidationError(fmt.Sprintf("unknown book %q", bookPart), nil).
			WithSuggestion("Run 'pocketbible books' to list book names")
	}

	chStr, vStr, hasVerse := strings.Cut(numPart, ":")
	if !hasVerse {
		chStr, vStr, hasVerse = strings.Cut(numPart, ".")
	}

	ch, err := strconv.ParseUint(chStr, 10, 16)
	if err != nil || ch == 0 || ch > uint64(Chapters(book)) {
		return Ref{}, bberrors.ValidationError(
			fmt.Sprintf("invalid chapter %q for %s (1-%d)", chStr, Name(book), Chapters(book)), err)
	}

	ref := Ref{Book: book, Chapter: uint16(ch)}
	if hasVerse {
		v, err := strconv.ParseUint(vStr, 10, 16)
		if err != nil || v == 0 {
			return Ref{}, bberrors.ValidationError(fmt.Sprintf("invalid verse %q", vStr), err)
		}
		ref.Verse = uint16(v)
	}
	return ref, nil
}

func fold(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}
