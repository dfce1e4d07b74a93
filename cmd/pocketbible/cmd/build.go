package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/pocketbible/internal/assets"
	"github.com/Aman-CERP/pocketbible/internal/builder"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
	"github.com/Aman-CERP/pocketbible/internal/profiling"
	"github.com/Aman-CERP/pocketbible/internal/storage"
)

type buildOptions struct {
	output string
	src    builder.Sources
}

func newBuildCmd(e *env) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate binary assets from sources",
		Long: `Generate binary assets from JSON, xz-compressed JSON or SQLite sources.

The Bible source produces the verse text, verse index and search shards.
Each collection source produces its own blob. A manifest with BLAKE3
digests of every written file is written last.

The output directory is locked for the duration of the build.`,
		Example: `  pocketbible build --bible bible.json.xz --output ./assets
  pocketbible build --bible bible.sqlite --missal missal.json --rosary rosary.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.src == (builder.Sources{}) {
				return bberrors.New(bberrors.ErrCodeInvalidSource, "no sources given", nil).
					WithSuggestion("Pass at least one of --bible, --missal, --devotional, --rosary, --confession")
			}
			out := opts.output
			if out == "" {
				out = e.cfg.Assets.BundledRoot
			}
			if out == "" {
				return bberrors.ConfigError("no output directory", nil).
					WithSuggestion("Pass --output or set assets.bundled_root")
			}

			b := builder.New(out).WithLogger(e.log()).WithMaxShardBytes(e.cfg.Search.MaxShardBytes)
			m, err := b.All(cmd.Context(), opts.src)
			if err != nil {
				return err
			}

			if ok, err := e.emit(cmd, m); ok {
				return err
			}
			w := e.out(cmd)
			w.Successf("Built %d files into %s", len(m.Files), out)
			for _, f := range m.Files {
				w.KeyValue(f.Path, profiling.FormatBytes(uint64(f.Size)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory (default: bundled root)")
	cmd.Flags().StringVar(&opts.src.Bible, "bible", "", "Bible source (.json, .json.xz, .db, .sqlite)")
	cmd.Flags().StringVar(&opts.src.Missal, "missal", "", "Missal source (.json, .json.xz)")
	cmd.Flags().StringVar(&opts.src.Devotional, "devotional", "", "Devotional source (.json, .json.xz)")
	cmd.Flags().StringVar(&opts.src.Rosary, "rosary", "", "Rosary source (.json, .json.xz)")
	cmd.Flags().StringVar(&opts.src.Confession, "confession", "", "Confession source (.json, .json.xz)")

	return cmd
}

type verifyJSON struct {
	Root string `json:"root"`
	*assets.VerifyReport
}

func newVerifyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [dir]",
		Short: "Check assets against their manifest",
		Long: `Check every file listed in manifest.json against its BLAKE3 digest.

Without an argument the root selected by the locator is verified.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var store storage.ByteStore
			if len(args) == 1 {
				store = storage.NewDir(args[0])
			} else {
				res, err := e.resolve()
				if err != nil {
					return err
				}
				store = res.Store
			}

			report, err := assets.VerifyManifest(store)
			if err != nil {
				return err
			}
			e.log().Debug("manifest verified",
				"root", store.Root(),
				"checked", report.Checked,
				"missing", len(report.Missing),
				"mismatched", len(report.Mismatched))

			if e.json {
				if err := e.out(cmd).JSON(verifyJSON{Root: store.Root(), VerifyReport: report}); err != nil {
					return err
				}
				if !report.OK() {
					return mismatch(store.Root(), report)
				}
				return nil
			}

			w := e.out(cmd)
			for _, name := range report.Missing {
				w.Errorf("missing: %s", name)
			}
			for _, name := range report.Mismatched {
				w.Errorf("digest mismatch: %s", name)
			}
			if !report.OK() {
				return mismatch(store.Root(), report)
			}
			w.Successf("%d files verified in %s", report.Checked, store.Root())
			return nil
		},
	}
}

func mismatch(root string, report *assets.VerifyReport) error {
	return bberrors.Newf(bberrors.ErrCodeManifestMismatch,
		"%s: %d missing, %d mismatched", root, len(report.Missing), len(report.Mismatched)).
		WithSuggestion("Rebuild the assets with 'pocketbible build'")
}
