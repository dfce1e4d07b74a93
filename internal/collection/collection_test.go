package collection

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/pocketbible/internal/assets"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
	"github.com/Aman-CERP/pocketbible/internal/storage"
)

func memStore(files map[string][]byte) storage.ByteStore {
	fsys := fstest.MapFS{}
	for name, data := range files {
		fsys[name] = &fstest.MapFile{Data: data}
	}
	return storage.NewFS(fsys, "mem")
}

func sampleMissal() []byte {
	return EncodeMissal(
		nil,
		[]MassPrayer{
			{Title: "Gloria", Text: "Glory to God in the highest"},
			{Title: "Creed", Text: "I believe in one God"},
			{Title: "Sanctus", Text: "Holy, Holy, Holy"},
		},
		[]MassResponse{
			{Title: "Greeting", Text: "And with your spirit."},
			{Title: "Gospel", Text: "Glory to you, O Lord."},
		},
		[]Reading{{
			Key:          "advent-1",
			Title:        "First Sunday of Advent",
			FirstReading: "Isaiah 2:1-5",
			Psalm:        "Psalm 122",
			Gospel:       "Matthew 24:37-44",
		}},
	)
}

func TestMissal_MassResponse_SkipsPriorSections(t *testing.T) {
	// Given: a missal with 3 prayers and 2 responses
	m, err := LoadMissal(memStore(map[string][]byte{assets.MissalFile: sampleMissal()}))
	require.NoError(t, err)

	// When: fetching response 1
	r, err := m.MassResponse(1)

	// Then: the skip-scan lands on the second response
	require.NoError(t, err)
	assert.Equal(t, MassResponse{Title: "Gospel", Text: "Glory to you, O Lord."}, r)
	assert.Equal(t, 0, m.NumSeasons())
	assert.Equal(t, 3, m.NumMassPrayers())
	assert.Equal(t, 2, m.NumMassResponses())
	assert.Equal(t, 1, m.NumReadings())
}

func TestMissal_AllSections(t *testing.T) {
	data := EncodeMissal(
		[]Season{{Name: "Advent", Description: "Four weeks of preparation"}, {Name: "Lent", Description: "Forty days"}},
		[]MassPrayer{{Title: "Gloria", Text: "Glory"}},
		nil,
		[]Reading{
			{Key: "a", Title: "A", FirstReading: "1", Psalm: "2", Gospel: "3"},
			{Key: "b", Title: "B", FirstReading: "x", Psalm: "y", Gospel: "z"},
		},
	)
	m, err := ParseMissal(data)
	require.NoError(t, err)

	s, err := m.Season(1)
	require.NoError(t, err)
	assert.Equal(t, "Lent", s.Name)

	p, err := m.MassPrayer(0)
	require.NoError(t, err)
	assert.Equal(t, "Gloria", p.Title)

	r, err := m.Reading(1)
	require.NoError(t, err)
	assert.Equal(t, "b", r.Key)
	assert.Equal(t, "x\n\ny\n\nz", r.Text())

	byKey, ok := m.ReadingByKey("a")
	require.True(t, ok)
	assert.Equal(t, "A", byKey.Title)

	_, ok = m.ReadingByKey("missing")
	assert.False(t, ok)
}

func TestMissal_OutOfRange(t *testing.T) {
	m, err := ParseMissal(sampleMissal())
	require.NoError(t, err)

	for _, i := range []int{-1, 2, 100} {
		_, err := m.MassResponse(i)
		assert.Equal(t, bberrors.ErrCodeInvalidReference, bberrors.GetCode(err))
	}
	_, err = m.Season(0)
	assert.Error(t, err)
}

func TestMissal_RejectsMalformed(t *testing.T) {
	good := sampleMissal()

	tests := []struct {
		name     string
		data     []byte
		wantKind bberrors.Kind
	}{
		{"truncated header", good[:4], bberrors.KindFormatInvalid},
		{"wrong magic", append([]byte("DEVO"), good[4:]...), bberrors.KindFormatInvalid},
		{"wrong version", append(append([]byte(nil), good[:4]...), append([]byte{2, 0}, good[6:]...)...), bberrors.KindFormatInvalid},
		{"truncated body", good[:len(good)-3], bberrors.KindBoundsViolation},
		{"missing section count", good[:8], bberrors.KindBoundsViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMissal(tt.data)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, bberrors.KindOf(err))
		})
	}
}

func TestMissal_LongKeyTruncatedTo255(t *testing.T) {
	data := EncodeMissal(nil, nil, nil, []Reading{{Key: strings.Repeat("k", 300), Title: "t"}})

	m, err := ParseMissal(data)
	require.NoError(t, err)
	r, err := m.Reading(0)

	require.NoError(t, err)
	assert.Len(t, r.Key, 255)
	assert.Equal(t, "t", r.Title)
}

func TestLoadMissal_Missing(t *testing.T) {
	_, err := LoadMissal(memStore(nil))
	assert.True(t, bberrors.IsNotFound(err))
}

func TestDevotional(t *testing.T) {
	// Given: a devotional with two prayers
	data := EncodeDevotional([]Prayer{
		{Title: "Our Father", Text: "Our Father, who art in heaven"},
		{Title: "Hail Mary", Text: "Hail Mary, full of grace"},
	})
	d, err := LoadDevotional(memStore(map[string][]byte{assets.DevotionalFile: data}))
	require.NoError(t, err)

	// When: fetching the second prayer
	p, err := d.Prayer(1)

	// Then: it decodes
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, "Hail Mary", p.Title)
	assert.Equal(t, "Hail Mary, full of grace", p.Text)

	_, err = d.Prayer(2)
	assert.Error(t, err)
}

func TestDevotional_ClaimedCountTooLarge(t *testing.T) {
	data := EncodeDevotional([]Prayer{{Title: "a", Text: "b"}})
	data[6] = 5

	_, err := LoadDevotional(memStore(map[string][]byte{assets.DevotionalFile: data}))

	assert.Equal(t, bberrors.KindBoundsViolation, bberrors.KindOf(err))
}

func TestRosary(t *testing.T) {
	data := EncodeRosary(
		"Begin with the Sign of the Cross.",
		[]Prayer{{Title: "Apostles' Creed", Text: "I believe in God"}},
		map[MysterySet][]Mystery{
			Joyful: {
				{Title: "The Annunciation", Meditation: "Humility", Scripture: "Luke 1:26-38"},
				{Title: "The Visitation", Meditation: "Love of neighbor", Scripture: "Luke 1:39-56"},
			},
			Luminous: {
				{Title: "The Baptism of the Lord", Meditation: "Openness", Scripture: "Matthew 3:13-17"},
			},
		},
	)
	r, err := LoadRosary(memStore(map[string][]byte{assets.RosaryFile: data}))
	require.NoError(t, err)

	assert.Equal(t, "Begin with the Sign of the Cross.", r.HowTo())
	assert.Equal(t, 1, r.NumPrayers())
	assert.Equal(t, 2, r.NumMysteries(Joyful))
	assert.Equal(t, 0, r.NumMysteries(Sorrowful))
	assert.Equal(t, 0, r.NumMysteries(Glorious))
	assert.Equal(t, 1, r.NumMysteries(Luminous))
	assert.Equal(t, 0, r.NumMysteries(MysterySet(9)))

	m, err := r.Mystery(Joyful, 1)
	require.NoError(t, err)
	assert.Equal(t, "The Visitation", m.Title)

	m, err = r.Mystery(Luminous, 0)
	require.NoError(t, err)
	assert.Equal(t, "Matthew 3:13-17", m.Scripture)

	_, err = r.Mystery(Glorious, 0)
	assert.Error(t, err)
	_, err = r.Mystery(MysterySet(-1), 0)
	assert.Error(t, err)
}

func TestParseMysterySet(t *testing.T) {
	set, err := ParseMysterySet("Sorrowful")
	require.NoError(t, err)
	assert.Equal(t, Sorrowful, set)
	assert.Equal(t, "sorrowful", set.String())

	_, err = ParseMysterySet("mournful")
	assert.Error(t, err)
	assert.Equal(t, "unknown", MysterySet(7).String())
}

func TestConfession(t *testing.T) {
	src := ConfessionSource{
		Guide:        "Examine your conscience.",
		Commandments: []string{"I am the Lord your God", "You shall not take the name of the Lord in vain"},
		DeadlySins:   []Sin{{Name: "Pride", Description: "Excessive belief in one's own abilities"}},
		Examination:  []Question{{Category: "God", Question: "Have I prayed daily?"}},
		ActsOfContrition: []Prayer{
			{Title: "Traditional", Text: "O my God, I am heartily sorry"},
		},
		Tips: "Be brief.",
		Post: "Do your penance.",
	}
	c, err := LoadConfession(memStore(map[string][]byte{assets.ConfessionFile: EncodeConfession(src)}))
	require.NoError(t, err)

	assert.Equal(t, src.Guide, c.Guide())
	assert.Equal(t, src.Tips, c.Tips())
	assert.Equal(t, src.Post, c.Post())
	assert.Equal(t, 2, c.NumCommandments())
	assert.Equal(t, 1, c.NumSins())
	assert.Equal(t, 1, c.NumQuestions())
	assert.Equal(t, 1, c.NumActs())

	cmd, err := c.Commandment(1)
	require.NoError(t, err)
	assert.Equal(t, src.Commandments[1], cmd)

	sin, err := c.Sin(0)
	require.NoError(t, err)
	assert.Equal(t, src.DeadlySins[0], sin)

	q, err := c.Question(0)
	require.NoError(t, err)
	assert.Equal(t, src.Examination[0], q)

	act, err := c.Act(0)
	require.NoError(t, err)
	assert.Equal(t, src.ActsOfContrition[0], act)
}

func TestConfession_TruncatedTrailer(t *testing.T) {
	data := EncodeConfession(ConfessionSource{Guide: "g", Tips: "t", Post: "the end"})

	_, err := LoadConfession(memStore(map[string][]byte{assets.ConfessionFile: data[:len(data)-2]}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "section post overruns blob")
}
