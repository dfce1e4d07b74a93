package collection

import (
	"github.com/Aman-CERP/pocketbible/internal/assets"
	"github.com/Aman-CERP/pocketbible/internal/storage"
)

// ConfessionMagic is "CONF" little-endian.
const ConfessionMagic uint32 = 0x464E4F43

const (
	confessionGuide = iota
	confessionCommandments
	confessionSins
	confessionExamination
	confessionActs
	confessionTips
	confessionPost
)

var confessionLayout = layout{
	single("guide"),
	records("ten_commandments", str),
	records("deadly_sins", str, str),
	records("examination", str, str),
	records("acts_of_contrition", str, str),
	single("tips"),
	single("post"),
}

// Sin is one of the deadly sins.
type Sin struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Question is an examination-of-conscience question.
type Question struct {
	Category string `json:"category"`
	Question string `json:"question"`
}

// Confession is a loaded confession.bin.
type Confession struct {
	b *blob
}

// ConfessionSource is the content of a confession blob.
type ConfessionSource struct {
	Guide            string     `json:"guide"`
	Commandments     []string   `json:"ten_commandments"`
	DeadlySins       []Sin      `json:"deadly_sins"`
	Examination      []Question `json:"examination"`
	ActsOfContrition []Prayer   `json:"acts_of_contrition"`
	Tips             string     `json:"tips"`
	Post             string     `json:"post"`
}

// LoadConfession reads and validates confession.bin.
func LoadConfession(store storage.ByteStore) (*Confession, error) {
	b, err := load(store, assets.ConfessionFile, ConfessionMagic, confessionLayout)
	if err != nil {
		return nil, err
	}
	return &Confession{b: b}, nil
}

// Guide returns the introductory guide.
func (c *Confession) Guide() string { return c.b.text(confessionGuide) }

// Tips returns the preparation tips.
func (c *Confession) Tips() string { return c.b.text(confessionTips) }

// Post returns the after-confession text.
func (c *Confession) Post() string { return c.b.text(confessionPost) }

func (c *Confession) NumCommandments() int { return c.b.count(confessionCommandments) }
func (c *Confession) NumSins() int         { return c.b.count(confessionSins) }
func (c *Confession) NumQuestions() int    { return c.b.count(confessionExamination) }
func (c *Confession) NumActs() int         { return c.b.count(confessionActs) }

// Commandment returns commandment i.
func (c *Confession) Commandment(i int) (string, error) {
	v, err := c.b.record(confessionCommandments, i)
	if err != nil {
		return "", err
	}
	return v[0], nil
}

// Sin returns deadly sin i.
func (c *Confession) Sin(i int) (Sin, error) {
	v, err := c.b.record(confessionSins, i)
	if err != nil {
		return Sin{}, err
	}
	return Sin{Name: v[0], Description: v[1]}, nil
}

// Question returns examination question i.
func (c *Confession) Question(i int) (Question, error) {
	v, err := c.b.record(confessionExamination, i)
	if err != nil {
		return Question{}, err
	}
	return Question{Category: v[0], Question: v[1]}, nil
}

// Act returns act of contrition i.
func (c *Confession) Act(i int) (Prayer, error) {
	v, err := c.b.record(confessionActs, i)
	if err != nil {
		return Prayer{}, err
	}
	return Prayer{Title: v[0], Text: v[1]}, nil
}

// EncodeConfession builds a confession blob.
func EncodeConfession(src ConfessionSource) []byte {
	e := newEncoder(ConfessionMagic)
	e.str(src.Guide)
	e.count(len(src.Commandments))
	for _, c := range src.Commandments {
		e.str(c)
	}
	e.count(len(src.DeadlySins))
	for _, s := range src.DeadlySins {
		e.str(s.Name)
		e.str(s.Description)
	}
	e.count(len(src.Examination))
	for _, q := range src.Examination {
		e.str(q.Category)
		e.str(q.Question)
	}
	e.count(len(src.ActsOfContrition))
	for _, a := range src.ActsOfContrition {
		e.str(a.Title)
		e.str(a.Text)
	}
	e.str(src.Tips)
	e.str(src.Post)
	return e.bytes()
}
