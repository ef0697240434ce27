package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Çatalhöyük", "catalhoyuk"},
		{"  Machu   Picchu ", "machu picchu"},
		{"TEOTIHUACÁN\tTemple", "teotihuacan temple"},
		{"", ""},
		{"Ñandú", "nandu"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Çatalhöyük", "Ἀκρόπολις", "İstanbul", "  Mixed\nWhite  space ",
		"Ærø", "straße", "Göbekli Tepe", "", "ﬁbula", "Đakovo",
	}

	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestPrimaryName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Great Pyramid of Giza", "Great Pyramid Giza"},
		{"Stonehenge - Neolithic monument", "Stonehenge"},
		{"Petra (Jordan)", "Petra"},
		{"Pompeii, Italy", "Pompeii"},
		{"An Ancient Temple in Luxor", "Ancient Temple Luxor"},
		{"A Roman Fort at Vindolanda", "Roman Fort Vindolanda"},
		{"The", "The"},
		{"of the", "of the"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PrimaryName(tt.in))
		})
	}
}

func TestPrimaryName_IdempotentOnBareNames(t *testing.T) {
	for _, s := range []string{"Great Pyramid Giza", "Stonehenge", "Machu Picchu", "Knossos Palace"} {
		assert.Equal(t, s, PrimaryName(s))
		assert.Equal(t, PrimaryName(s), PrimaryName(PrimaryName(s)))
	}
}

func TestScore_Tiers(t *testing.T) {
	tests := []struct {
		name  string
		title string
		query string
		want  int
	}{
		{"exact", "Machu Picchu", "machu picchu", ScoreExact},
		{"exact after normalisation", "Çatalhöyük", "catalhoyuk", ScoreExact},
		{"prefix", "Stonehenge Avenue", "Stonehenge", ScorePrefix},
		{"substring", "View of Stonehenge at dawn", "Stonehenge", ScoreSubstring},
		{"primary name", "Great Pyramid Giza plateau survey", "The Great Pyramid of Giza", ScorePrimary},
		{"partial two of three", "Pyramid complex near Giza", "The Great Pyramid of Giza", 26},
		{"no overlap", "Bronze helmet", "Machu Picchu", 0},
		{"empty query", "Bronze helmet", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.title, tt.query, Options{}))
		})
	}
}

func TestScore_ShortWordsEarnNoPartialCredit(t *testing.T) {
	// "Tell" and "Umm" are the only words; only "Tell" is long enough.
	assert.Equal(t, ScorePartial, Score("Tell excavations", "Umm Tell", Options{}))
	assert.Equal(t, 0, Score("Umm settlement", "Umm Tell", Options{}))
}

func TestScore_Bonuses(t *testing.T) {
	opts := Options{Country: "Peru", BoostKeywords: []string{"inca", "ruins"}}

	// Substring 70 + country 15 + keyword 10 once.
	assert.Equal(t, 95, Score("Inca ruins of Machu Picchu, Peru", "Machu Picchu", opts))

	// Exact match stays capped.
	assert.Equal(t, MaxScore, Score("Machu Picchu Peru inca", "Machu Picchu Peru inca", opts))

	// No tier match: only bonuses count.
	assert.Equal(t, 25, Score("Inca textile from Peru", "Stonehenge", opts))
}

func TestScore_Range(t *testing.T) {
	opts := Options{Country: "Italy", BoostKeywords: []string{"roman", "forum", "temple"}}
	titles := []string{
		"Roman Forum", "Temple of Saturn, Roman Forum, Italy", "", "Forum", "ITALY roman temple forum",
	}
	queries := []string{"Roman Forum", "forum", "", "The Temple of Saturn", "Italy"}

	for _, title := range titles {
		for _, q := range queries {
			s := Score(title, q, opts)
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, MaxScore)
		}
	}
}

func TestScore_NoSharedWordsCeiling(t *testing.T) {
	s := Score("Bronze age helmet", "Machu Picchu", Options{BoostKeywords: []string{"helmet"}})
	assert.LessOrEqual(t, s, 25)
}

func TestScore_ExplicitPrimaryName(t *testing.T) {
	s := Score("Giza necropolis", "Pyramids", Options{PrimaryName: "Giza"})
	assert.Equal(t, ScorePrimary, s)
}

func TestFromFraction(t *testing.T) {
	assert.Equal(t, 0, FromFraction(-0.2))
	assert.Equal(t, 50, FromFraction(0.5))
	assert.Equal(t, 100, FromFraction(1.7))
	assert.Equal(t, 87, FromFraction(0.87))
}
