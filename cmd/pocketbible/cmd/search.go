package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
	"github.com/Aman-CERP/pocketbible/internal/search"
)

type searchHit struct {
	ID   uint32 `json:"id"`
	Ref  string `json:"ref"`
	Text string `json:"text,omitempty"`
}

type searchJSON struct {
	Query   string      `json:"query"`
	Token   string      `json:"token"`
	Results []searchHit `json:"results"`
}

func newSearchCmd(e *env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <word>",
		Short: "Find verses containing a word or word prefix",
		Long: `Find verses whose text holds a word starting with the query.

Only the first word of the query is used; matching is ASCII and
case-insensitive. Results are unordered candidates, not ranked.`,
		Example: `  pocketbible search shepherd
  pocketbible search begin --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			token := search.Normalize(query)
			if len(token) < search.MinTokenLen {
				return bberrors.New(bberrors.ErrCodeInvalidQuery,
					fmt.Sprintf("query %q needs at least %d letters", query, search.MinTokenLen), nil)
			}

			res, err := e.resolve()
			if err != nil {
				return err
			}
			idx := search.Open(res.Store, e.searchOptions())
			defer func() { _ = idx.Close() }()
			if !idx.Available() {
				return idx.Err()
			}

			store, err := e.versesAt(res)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result := searchJSON{Query: query, Token: token, Results: []searchHit{}}
			for _, id := range idx.Lookup(query, limit) {
				ref, ok := store.RefFromVerseID(id)
				if !ok {
					e.log().Warn("search hit outside verse index", "id", id)
					continue
				}
				text, _ := store.Text(ref.Book, ref.Chapter, ref.Verse)
				result.Results = append(result.Results, searchHit{ID: id, Ref: ref.String(), Text: text})
			}

			stats := idx.Stats()
			e.log().Debug("search complete",
				"token", token,
				"results", len(result.Results),
				"shard_loads", stats.Loads,
				"shard_hits", stats.Hits)

			if ok, err := e.emit(cmd, result); ok {
				return err
			}
			w := e.out(cmd)
			if len(result.Results) == 0 {
				w.Warningf("No verses match %q", token)
				return nil
			}
			w.Headingf("%d verses match %q", len(result.Results), token)
			for _, hit := range result.Results {
				w.Section(hit.Ref, hit.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (default from config)")

	return cmd
}
