package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/pocketbible/internal/collection"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
	"github.com/Aman-CERP/pocketbible/internal/storage"
)

// collect reads records 0..n-1 through at.
func collect[T any](n int, at func(int) (T, error)) ([]T, error) {
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := at(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseIndex parses a 1-based list position.
func parseIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, bberrors.Newf(bberrors.ErrCodeInvalidReference, "index %q out of range (1-%d)", arg, n)
	}
	return i - 1, nil
}

// assetStore resolves the roots and returns the selected store.
func (e *env) assetStore() (storage.ByteStore, error) {
	res, err := e.resolve()
	if err != nil {
		return nil, err
	}
	return res.Store, nil
}

func newMissalCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "missal",
		Short: "Browse the missal",
	}

	load := func() (*collection.Missal, error) {
		store, err := e.assetStore()
		if err != nil {
			return nil, err
		}
		return collection.LoadMissal(store)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "seasons",
		Short: "List liturgical seasons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := load()
			if err != nil {
				return err
			}
			seasons, err := collect(m.NumSeasons(), m.Season)
			if err != nil {
				return err
			}
			if ok, err := e.emit(cmd, seasons); ok {
				return err
			}
			w := e.out(cmd)
			for _, s := range seasons {
				w.Section(s.Name, s.Description)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "prayers",
		Short: "Print the prayers of the Mass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := load()
			if err != nil {
				return err
			}
			prayers, err := collect(m.NumMassPrayers(), m.MassPrayer)
			if err != nil {
				return err
			}
			if ok, err := e.emit(cmd, prayers); ok {
				return err
			}
			w := e.out(cmd)
			for _, p := range prayers {
				w.Section(p.Title, p.Text)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "responses",
		Short: "Print the people's responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := load()
			if err != nil {
				return err
			}
			responses, err := collect(m.NumMassResponses(), m.MassResponse)
			if err != nil {
				return err
			}
			if ok, err := e.emit(cmd, responses); ok {
				return err
			}
			w := e.out(cmd)
			for _, r := range responses {
				w.Section(r.Title, r.Text)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reading [key]",
		Short: "List reading keys, or print the readings for one key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := load()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				readings, err := collect(m.NumReadings(), m.Reading)
				if err != nil {
					return err
				}
				if e.json {
					return e.out(cmd).JSON(readings)
				}
				w := e.out(cmd)
				for _, r := range readings {
					w.KeyValue(r.Key, r.Title)
				}
				return nil
			}

			r, ok := m.ReadingByKey(args[0])
			if !ok {
				return bberrors.Newf(bberrors.ErrCodeInvalidReference, "no reading with key %q", args[0]).
					WithSuggestion("Run 'pocketbible missal reading' to list keys")
			}
			if ok, err := e.emit(cmd, r); ok {
				return err
			}
			w := e.out(cmd)
			w.Heading(r.Title)
			w.Section("First reading", r.FirstReading)
			w.Section("Psalm", r.Psalm)
			w.Section("Gospel", r.Gospel)
			return nil
		},
	})

	return cmd
}

func newDevotionalCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "devotional [number]",
		Short: "List devotional prayers, or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := e.assetStore()
			if err != nil {
				return err
			}
			d, err := collection.LoadDevotional(store)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				prayers, err := collect(d.Len(), d.Prayer)
				if err != nil {
					return err
				}
				if e.json {
					return e.out(cmd).JSON(prayers)
				}
				w := e.out(cmd)
				for i, p := range prayers {
					w.Item(i+1, p.Title)
				}
				return nil
			}

			i, err := parseIndex(args[0], d.Len())
			if err != nil {
				return err
			}
			p, err := d.Prayer(i)
			if err != nil {
				return err
			}
			if ok, err := e.emit(cmd, p); ok {
				return err
			}
			e.out(cmd).Section(p.Title, p.Text)
			return nil
		},
	}
}

// mysteriesFor returns the set traditionally prayed on a weekday.
func mysteriesFor(day time.Weekday) collection.MysterySet {
	switch day {
	case time.Monday, time.Saturday:
		return collection.Joyful
	case time.Tuesday, time.Friday:
		return collection.Sorrowful
	case time.Thursday:
		return collection.Luminous
	default:
		return collection.Glorious
	}
}

type rosaryJSON struct {
	HowTo     string               `json:"how_to,omitempty"`
	Prayers   []collection.Prayer  `json:"prayers,omitempty"`
	Set       string               `json:"set"`
	Mysteries []collection.Mystery `json:"mysteries"`
}

func newRosaryCmd(e *env) *cobra.Command {
	var withPrayers bool

	cmd := &cobra.Command{
		Use:   "rosary [joyful|sorrowful|glorious|luminous]",
		Short: "Print the mysteries of the rosary",
		Long: `Print one set of mysteries. Without an argument the set for today
is chosen: joyful on Monday and Saturday, sorrowful on Tuesday and Friday,
luminous on Thursday, glorious on Wednesday and Sunday.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set := mysteriesFor(time.Now().Weekday())
			if len(args) == 1 {
				var err error
				if set, err = collection.ParseMysterySet(args[0]); err != nil {
					return err
				}
			}

			store, err := e.assetStore()
			if err != nil {
				return err
			}
			r, err := collection.LoadRosary(store)
			if err != nil {
				return err
			}

			result := rosaryJSON{Set: set.String()}
			result.Mysteries, err = collect(r.NumMysteries(set), func(i int) (collection.Mystery, error) {
				return r.Mystery(set, i)
			})
			if err != nil {
				return err
			}
			if withPrayers {
				result.HowTo = r.HowTo()
				if result.Prayers, err = collect(r.NumPrayers(), r.Prayer); err != nil {
					return err
				}
			}

			if ok, err := e.emit(cmd, result); ok {
				return err
			}
			w := e.out(cmd)
			if withPrayers {
				w.Section("How to pray the rosary", result.HowTo)
				for _, p := range result.Prayers {
					w.Section(p.Title, p.Text)
				}
			}
			w.Headingf("The %s mysteries", set)
			for i, m := range result.Mysteries {
				w.Section(fmt.Sprintf("%d. %s", i+1, m.Title), m.Meditation)
				if m.Scripture != "" {
					w.Text(m.Scripture)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&withPrayers, "prayers", "p", false, "Include the how-to and the rosary prayers")

	return cmd
}

// confessionSections lists the --section values in reading order.
var confessionSections = []string{"guide", "commandments", "sins", "examination", "acts", "tips", "post"}

func newConfessionCmd(e *env) *cobra.Command {
	var section string

	cmd := &cobra.Command{
		Use:   "confession",
		Short: "Print the confession guide",
		Example: `  pocketbible confession
  pocketbible confession --section examination`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sections := confessionSections
			if section != "" {
				if !slices.Contains(confessionSections, section) {
					return bberrors.Newf(bberrors.ErrCodeInvalidReference, "unknown section %q", section).
						WithSuggestion(fmt.Sprintf("Use one of %v", confessionSections))
				}
				sections = []string{section}
			}

			store, err := e.assetStore()
			if err != nil {
				return err
			}
			c, err := collection.LoadConfession(store)
			if err != nil {
				return err
			}
			src, err := confessionContent(c)
			if err != nil {
				return err
			}

			if ok, err := e.emit(cmd, src); ok {
				return err
			}
			w := e.out(cmd)
			for _, s := range sections {
				switch s {
				case "guide":
					w.Section("Guide", src.Guide)
				case "commandments":
					w.Heading("The Ten Commandments")
					for i, c := range src.Commandments {
						w.Item(i+1, c)
					}
					w.Newline()
				case "sins":
					w.Heading("The Seven Deadly Sins")
					for _, sin := range src.DeadlySins {
						w.Section(sin.Name, sin.Description)
					}
				case "examination":
					w.Heading("Examination of Conscience")
					for _, g := range groupQuestions(src.Examination) {
						w.Section(g.category, strings.Join(g.questions, "\n"))
					}
				case "acts":
					for _, act := range src.ActsOfContrition {
						w.Section(act.Title, act.Text)
					}
				case "tips":
					w.Section("Tips", src.Tips)
				case "post":
					w.Section("After confession", src.Post)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "", "Print one section: guide, commandments, sins, examination, acts, tips, post")

	return cmd
}

// confessionContent reads every section of a loaded confession blob.
func confessionContent(c *collection.Confession) (collection.ConfessionSource, error) {
	src := collection.ConfessionSource{
		Guide: c.Guide(),
		Tips:  c.Tips(),
		Post:  c.Post(),
	}
	var err error
	if src.Commandments, err = collect(c.NumCommandments(), c.Commandment); err != nil {
		return src, err
	}
	if src.DeadlySins, err = collect(c.NumSins(), c.Sin); err != nil {
		return src, err
	}
	if src.Examination, err = collect(c.NumQuestions(), c.Question); err != nil {
		return src, err
	}
	if src.ActsOfContrition, err = collect(c.NumActs(), c.Act); err != nil {
		return src, err
	}
	return src, nil
}

type questionGroup struct {
	category  string
	questions []string
}

// groupQuestions gathers consecutive questions that share a category.
func groupQuestions(qs []collection.Question) []questionGroup {
	var groups []questionGroup
	for _, q := range qs {
		if n := len(groups); n == 0 || groups[n-1].category != q.Category {
			groups = append(groups, questionGroup{category: q.Category})
		}
		g := &groups[len(groups)-1]
		g.questions = append(g.questions, "- "+q.Question)
	}
	return groups
}
