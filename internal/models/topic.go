package models

// Level is a CEFR sublevel as tracked on the user profile.
type Level string

const (
	LevelA11 Level = "A1.1"
	LevelA12 Level = "A1.2"
	LevelA21 Level = "A2.1"
	LevelA22 Level = "A2.2"
	LevelB11 Level = "B1.1"
	LevelB12 Level = "B1.2"
)

var ValidLevels = map[Level]bool{
	LevelA11: true,
	LevelA12: true,
	LevelA21: true,
	LevelA22: true,
	LevelB11: true,
	LevelB12: true,
}

// GrammarLevel is the CEFR band a grammar topic belongs to.
type GrammarLevel string

const (
	BandA1 GrammarLevel = "A1"
	BandA2 GrammarLevel = "A2"
	BandB1 GrammarLevel = "B1"
)

// GrammarLevels lists the bands in teaching order.
var GrammarLevels = []GrammarLevel{BandA1, BandA2, BandB1}

// BandIndex returns the position of a band in teaching order (A1=0, A2=1, B1=2).
// Unknown bands sort last.
func BandIndex(level GrammarLevel) int {
	for i, l := range GrammarLevels {
		if l == level {
			return i
		}
	}
	return len(GrammarLevels)
}

// Band reduces a profile sublevel to its grammar band ("A2.1" -> "A2").
func (l Level) Band() GrammarLevel {
	if len(l) < 2 {
		return BandA1
	}
	return GrammarLevel(l[:2])
}

// GrammarTopic is a teachable grammar point. Reference data, seeded once.
type GrammarTopic struct {
	ID            int          `json:"id"`
	Slug          string       `json:"slug"`
	NameDE        string       `json:"name_de"`
	NameEN        string       `json:"name_en"`
	Level         GrammarLevel `json:"level"`
	DescriptionDE *string      `json:"description_de,omitempty"`
	DescriptionEN *string      `json:"description_en,omitempty"`
	OrderIndex    int          `json:"order_index"`
	Weight        float64      `json:"weight"`
}
