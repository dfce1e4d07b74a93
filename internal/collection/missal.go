package collection

import (
	"fmt"

	"github.com/Aman-CERP/pocketbible/internal/assets"
	"github.com/Aman-CERP/pocketbible/internal/storage"
)

// MissalMagic is "MISS" little-endian.
const MissalMagic uint32 = 0x5353494D

const (
	missalSeasons = iota
	missalPrayers
	missalResponses
	missalReadings
)

var missalLayout = layout{
	records("seasons", str, str),
	records("mass_prayers", str, str),
	records("mass_responses", str, str),
	records("readings", short, str, str, str, str),
}

// Season is a liturgical season.
type Season struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MassPrayer is a fixed prayer of the Mass.
type MassPrayer struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// MassResponse is a people's response.
type MassResponse struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Reading is the set of readings for one liturgical day.
type Reading struct {
	Key          string `json:"key"`
	Title        string `json:"title"`
	FirstReading string `json:"first_reading"`
	Psalm        string `json:"psalm"`
	Gospel       string `json:"gospel"`
}

// Text joins the first reading, psalm and gospel with blank lines.
func (r Reading) Text() string {
	return fmt.Sprintf("%s\n\n%s\n\n%s", r.FirstReading, r.Psalm, r.Gospel)
}

// Missal is a loaded missal.bin.
type Missal struct {
	b *blob
}

// LoadMissal reads and validates missal.bin.
func LoadMissal(store storage.ByteStore) (*Missal, error) {
	b, err := load(store, assets.MissalFile, MissalMagic, missalLayout)
	if err != nil {
		return nil, err
	}
	return &Missal{b: b}, nil
}

// ParseMissal validates an in-memory missal blob.
func ParseMissal(data []byte) (*Missal, error) {
	b, err := parse(assets.MissalFile, data, MissalMagic, missalLayout)
	if err != nil {
		return nil, err
	}
	return &Missal{b: b}, nil
}

func (m *Missal) NumSeasons() int       { return m.b.count(missalSeasons) }
func (m *Missal) NumMassPrayers() int   { return m.b.count(missalPrayers) }
func (m *Missal) NumMassResponses() int { return m.b.count(missalResponses) }
func (m *Missal) NumReadings() int      { return m.b.count(missalReadings) }

// Season returns season i.
func (m *Missal) Season(i int) (Season, error) {
	v, err := m.b.record(missalSeasons, i)
	if err != nil {
		return Season{}, err
	}
	return Season{Name: v[0], Description: v[1]}, nil
}

// MassPrayer returns mass prayer i.
func (m *Missal) MassPrayer(i int) (MassPrayer, error) {
	v, err := m.b.record(missalPrayers, i)
	if err != nil {
		return MassPrayer{}, err
	}
	return MassPrayer{Title: v[0], Text: v[1]}, nil
}

// MassResponse returns mass response i.
func (m *Missal) MassResponse(i int) (MassResponse, error) {
	v, err := m.b.record(missalResponses, i)
	if err != nil {
		return MassResponse{}, err
	}
	return MassResponse{Title: v[0], Text: v[1]}, nil
}

// Reading returns reading i. Readings are stored sorted by key.
func (m *Missal) Reading(i int) (Reading, error) {
	v, err := m.b.record(missalReadings, i)
	if err != nil {
		return Reading{}, err
	}
	return Reading{Key: v[0], Title: v[1], FirstReading: v[2], Psalm: v[3], Gospel: v[4]}, nil
}

// ReadingByKey scans the readings for an exact key.
func (m *Missal) ReadingByKey(key string) (Reading, bool) {
	for i := 0; i < m.NumReadings(); i++ {
		r, err := m.Reading(i)
		if err != nil {
			return Reading{}, false
		}
		if r.Key == key {
			return r, true
		}
	}
	return Reading{}, false
}

// EncodeMissal builds a missal blob. Readings are written in the order given.
func EncodeMissal(seasons []Season, prayers []MassPrayer, responses []MassResponse, readings []Reading) []byte {
	e := newEncoder(MissalMagic)
	e.count(len(seasons))
	for _, s := range seasons {
		e.str(s.Name)
		e.str(s.Description)
	}
	e.count(len(prayers))
	for _, p := range prayers {
		e.str(p.Title)
		e.str(p.Text)
	}
	e.count(len(responses))
	for _, r := range responses {
		e.str(r.Title)
		e.str(r.Text)
	}
	e.count(len(readings))
	for _, r := range readings {
		e.short(r.Key)
		e.str(r.Title)
		e.str(r.FirstReading)
		e.str(r.Psalm)
		e.str(r.Gospel)
	}
	return e.bytes()
}
