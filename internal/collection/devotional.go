package collection

import (
	"github.com/Aman-CERP/pocketbible/internal/assets"
	"github.com/Aman-CERP/pocketbible/internal/storage"
)

// DevotionalMagic is "DEVO" little-endian.
const DevotionalMagic uint32 = 0x4F564544

var devotionalLayout = layout{
	records("prayers", str, str),
}

// Prayer is a titled prayer, used by the devotional and rosary blobs.
type Prayer struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Devotional is a loaded devotional.bin.
type Devotional struct {
	b *blob
}

// LoadDevotional reads and validates devotional.bin.
func LoadDevotional(store storage.ByteStore) (*Devotional, error) {
	b, err := load(store, assets.DevotionalFile, DevotionalMagic, devotionalLayout)
	if err != nil {
		return nil, err
	}
	return &Devotional{b: b}, nil
}

// Len returns the number of prayers.
func (d *Devotional) Len() int {
	return d.b.count(0)
}

// Prayer returns prayer i.
func (d *Devotional) Prayer(i int) (Prayer, error) {
	v, err := d.b.record(0, i)
	if err != nil {
		return Prayer{}, err
	}
	return Prayer{Title: v[0], Text: v[1]}, nil
}

// EncodeDevotional builds a devotional blob.
func EncodeDevotional(prayers []Prayer) []byte {
	e := newEncoder(DevotionalMagic)
	e.count(len(prayers))
	for _, p := range prayers {
		e.str(p.Title)
		e.str(p.Text)
	}
	return e.bytes()
}
