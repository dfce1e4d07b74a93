package collection

import (
	"strings"

	"github.com/Aman-CERP/pocketbible/internal/assets"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
	"github.com/Aman-CERP/pocketbible/internal/storage"
)

// RosaryMagic is "ROSA" little-endian.
const RosaryMagic uint32 = 0x41534F52

// MysterySet selects one of the four sets of mysteries.
type MysterySet int

const (
	Joyful MysterySet = iota
	Sorrowful
	Glorious
	Luminous
)

// MysterySets lists the sets in blob order.
var MysterySets = []MysterySet{Joyful, Sorrowful, Glorious, Luminous}

var mysteryNames = [...]string{"joyful", "sorrowful", "glorious", "luminous"}

// String returns the set's name.
func (s MysterySet) String() string {
	if s < 0 || int(s) >= len(mysteryNames) {
		return "unknown"
	}
	return mysteryNames[s]
}

// ParseMysterySet accepts a set name, case-insensitively.
func ParseMysterySet(name string) (MysterySet, error) {
	for i, n := range mysteryNames {
		if strings.EqualFold(name, n) {
			return MysterySet(i), nil
		}
	}
	return 0, bberrors.Newf(bberrors.ErrCodeInvalidReference,
		"unknown mystery set %q (joyful, sorrowful, glorious, luminous)", name)
}

const (
	rosaryHowTo = iota
	rosaryPrayers
	rosaryMysteries // first of four consecutive sets
)

var rosaryLayout = layout{
	single("how_to"),
	records("prayers", str, str),
	records("joyful", str, str, str),
	records("sorrowful", str, str, str),
	records("glorious", str, str, str),
	records("luminous", str, str, str),
}

// Mystery is one decade's mystery.
type Mystery struct {
	Title      string `json:"title"`
	Meditation string `json:"meditation"`
	Scripture  string `json:"scripture"`
}

// Rosary is a loaded rosary.bin.
type Rosary struct {
	b *blob
}

// LoadRosary reads and validates rosary.bin.
func LoadRosary(store storage.ByteStore) (*Rosary, error) {
	b, err := load(store, assets.RosaryFile, RosaryMagic, rosaryLayout)
	if err != nil {
		return nil, err
	}
	return &Rosary{b: b}, nil
}

// HowTo returns the instructions for praying the rosary.
func (r *Rosary) HowTo() string {
	return r.b.text(rosaryHowTo)
}

// NumPrayers returns the number of rosary prayers.
func (r *Rosary) NumPrayers() int {
	return r.b.count(rosaryPrayers)
}

// Prayer returns prayer i.
func (r *Rosary) Prayer(i int) (Prayer, error) {
	v, err := r.b.record(rosaryPrayers, i)
	if err != nil {
		return Prayer{}, err
	}
	return Prayer{Title: v[0], Text: v[1]}, nil
}

// NumMysteries returns the number of mysteries in a set.
func (r *Rosary) NumMysteries(set MysterySet) int {
	if set < Joyful || set > Luminous {
		return 0
	}
	return r.b.count(rosaryMysteries + int(set))
}

// Mystery returns mystery i of a set.
func (r *Rosary) Mystery(set MysterySet, i int) (Mystery, error) {
	if set < Joyful || set > Luminous {
		return Mystery{}, bberrors.Newf(bberrors.ErrCodeInvalidReference, "unknown mystery set %d", int(set))
	}
	v, err := r.b.record(rosaryMysteries+int(set), i)
	if err != nil {
		return Mystery{}, err
	}
	return Mystery{Title: v[0], Meditation: v[1], Scripture: v[2]}, nil
}

// EncodeRosary builds a rosary blob. mysteries is indexed by MysterySet;
// missing sets are written empty.
func EncodeRosary(howTo string, prayers []Prayer, mysteries map[MysterySet][]Mystery) []byte {
	e := newEncoder(RosaryMagic)
	e.str(howTo)
	e.count(len(prayers))
	for _, p := range prayers {
		e.str(p.Title)
		e.str(p.Text)
	}
	for _, set := range MysterySets {
		ms := mysteries[set]
		e.count(len(ms))
		for _, m := range ms {
			e.str(m.Title)
			e.str(m.Meditation)
			e.str(m.Scripture)
		}
	}
	return e.bytes()
}
