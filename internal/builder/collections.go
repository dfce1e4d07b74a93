package builder

import (
	"log/slog"
	"sort"

	"github.com/Aman-CERP/pocketbible/internal/assets"
	"github.com/Aman-CERP/pocketbible/internal/collection"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

const maxRecords = 0xFFFF

type missalSource struct {
	Seasons       []collection.Season       `json:"seasons"`
	MassPrayers   []collection.MassPrayer   `json:"mass_prayers"`
	MassResponses []collection.MassResponse `json:"mass_responses"`
	Readings      map[string]struct {
		Title        string `json:"title"`
		FirstReading string `json:"first_reading"`
		Psalm        string `json:"psalm"`
		Gospel       string `json:"gospel"`
	} `json:"readings"`
}

type devotionalSource struct {
	Prayers []collection.Prayer `json:"prayers"`
}

type rosarySource struct {
	HowTo     string                          `json:"how_to"`
	Prayers   []collection.Prayer             `json:"prayers"`
	Mysteries map[string][]collection.Mystery `json:"mysteries"`
}

// BuildMissal writes missal.bin. Readings are keyed in the source and
// written sorted by key.
func (b *Builder) BuildMissal(path string) error {
	var src missalSource
	if err := decodeJSON(path, &src); err != nil {
		return err
	}
	if err := checkCounts(path, len(src.Seasons), len(src.MassPrayers), len(src.MassResponses), len(src.Readings)); err != nil {
		return err
	}

	for i := range src.Seasons {
		s := &src.Seasons[i]
		s.Name, s.Description = truncate(s.Name, MaxString), truncate(s.Description, MaxString)
	}
	for i := range src.MassPrayers {
		p := &src.MassPrayers[i]
		p.Title, p.Text = truncate(p.Title, MaxString), truncate(p.Text, MaxString)
	}
	for i := range src.MassResponses {
		r := &src.MassResponses[i]
		r.Title, r.Text = truncate(r.Title, MaxString), truncate(r.Text, MaxString)
	}

	keys := make([]string, 0, len(src.Readings))
	for k := range src.Readings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	readings := make([]collection.Reading, 0, len(keys))
	for _, k := range keys {
		r := src.Readings[k]
		readings = append(readings, collection.Reading{
			Key:          truncate(k, MaxReadingKey),
			Title:        truncate(r.Title, MaxString),
			FirstReading: truncate(r.FirstReading, MaxString),
			Psalm:        truncate(r.Psalm, MaxString),
			Gospel:       truncate(r.Gospel, MaxString),
		})
	}

	data := collection.EncodeMissal(src.Seasons, src.MassPrayers, src.MassResponses, readings)
	if err := b.writeFile(assets.MissalFile, data); err != nil {
		return err
	}
	b.logger.Info("missal written",
		slog.Int("seasons", len(src.Seasons)),
		slog.Int("prayers", len(src.MassPrayers)),
		slog.Int("responses", len(src.MassResponses)),
		slog.Int("readings", len(readings)))
	return nil
}

// BuildDevotional writes devotional.bin.
func (b *Builder) BuildDevotional(path string) error {
	var src devotionalSource
	if err := decodeJSON(path, &src); err != nil {
		return err
	}
	if err := checkCounts(path, len(src.Prayers)); err != nil {
		return err
	}
	for i := range src.Prayers {
		p := &src.Prayers[i]
		p.Title, p.Text = truncate(p.Title, MaxDevotionalTitle), truncate(p.Text, MaxDevotionalText)
	}

	if err := b.writeFile(assets.DevotionalFile, collection.EncodeDevotional(src.Prayers)); err != nil {
		return err
	}
	b.logger.Info("devotional written", slog.Int("prayers", len(src.Prayers)))
	return nil
}

// BuildRosary writes rosary.bin. Unknown mystery set names in the source
// are rejected.
func (b *Builder) BuildRosary(path string) error {
	var src rosarySource
	if err := decodeJSON(path, &src); err != nil {
		return err
	}

	mysteries := make(map[collection.MysterySet][]collection.Mystery, len(src.Mysteries))
	for name, ms := range src.Mysteries {
		set, err := collection.ParseMysterySet(name)
		if err != nil {
			return bberrors.New(bberrors.ErrCodeInvalidSource, path+": "+err.Error(), err)
		}
		for i := range ms {
			m := &ms[i]
			m.Title = truncate(m.Title, MaxString)
			m.Meditation = truncate(m.Meditation, MaxString)
			m.Scripture = truncate(m.Scripture, MaxString)
		}
		if err := checkCounts(path, len(ms)); err != nil {
			return err
		}
		mysteries[set] = ms
	}
	if err := checkCounts(path, len(src.Prayers)); err != nil {
		return err
	}
	for i := range src.Prayers {
		p := &src.Prayers[i]
		p.Title, p.Text = truncate(p.Title, MaxString), truncate(p.Text, MaxString)
	}

	data := collection.EncodeRosary(truncate(src.HowTo, MaxString), src.Prayers, mysteries)
	if err := b.writeFile(assets.RosaryFile, data); err != nil {
		return err
	}
	b.logger.Info("rosary written", slog.Int("prayers", len(src.Prayers)), slog.Int("sets", len(mysteries)))
	return nil
}

// BuildConfession writes confession.bin.
func (b *Builder) BuildConfession(path string) error {
	var src collection.ConfessionSource
	if err := decodeJSON(path, &src); err != nil {
		return err
	}
	if err := checkCounts(path, len(src.Commandments), len(src.DeadlySins), len(src.Examination), len(src.ActsOfContrition)); err != nil {
		return err
	}

	src.Guide = truncate(src.Guide, MaxString)
	src.Tips = truncate(src.Tips, MaxString)
	src.Post = truncate(src.Post, MaxString)
	for i := range src.Commandments {
		src.Commandments[i] = truncate(src.Commandments[i], MaxString)
	}
	for i := range src.DeadlySins {
		s := &src.DeadlySins[i]
		s.Name, s.Description = truncate(s.Name, MaxString), truncate(s.Description, MaxString)
	}
	for i := range src.Examination {
		q := &src.Examination[i]
		q.Category, q.Question = truncate(q.Category, MaxString), truncate(q.Question, MaxString)
	}
	for i := range src.ActsOfContrition {
		a := &src.ActsOfContrition[i]
		a.Title, a.Text = truncate(a.Title, MaxString), truncate(a.Text, MaxString)
	}

	if err := b.writeFile(assets.ConfessionFile, collection.EncodeConfession(src)); err != nil {
		return err
	}
	b.logger.Info("confession written",
		slog.Int("commandments", len(src.Commandments)),
		slog.Int("sins", len(src.DeadlySins)),
		slog.Int("questions", len(src.Examination)),
		slog.Int("acts", len(src.ActsOfContrition)))
	return nil
}

func checkCounts(path string, counts ...int) error {
	for _, n := range counts {
		if n > maxRecords {
			return bberrors.Newf(bberrors.ErrCodeInvalidSource,
				"%s: section has %d records, limit is %d", path, n, maxRecords)
		}
	}
	return nil
}
