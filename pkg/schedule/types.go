package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PriceLevel string

const (
	LevelVeryCheap     PriceLevel = "VERY_CHEAP"
	LevelCheap         PriceLevel = "CHEAP"
	LevelNormal        PriceLevel = "NORMAL"
	LevelExpensive     PriceLevel = "EXPENSIVE"
	LevelVeryExpensive PriceLevel = "VERY_EXPENSIVE"
)

// PriceInterval is one priced period (usually an hour) of the priced day.
type PriceInterval struct {
	Total    decimal.Decimal `json:"total"`
	StartsAt time.Time       `json:"startsAt"`
	Level    PriceLevel      `json:"level"`
}

type HeatingMode int

const (
	ModeEco     HeatingMode = 0
	ModeComfort HeatingMode = 1
	ModeAway    HeatingMode = 2
	ModeOff     HeatingMode = 4
)

func (m HeatingMode) String() string {
	switch m {
	case ModeEco:
		return "ECO"
	case ModeComfort:
		return "COMFORT"
	case ModeAway:
		return "AWAY"
	case ModeOff:
		return "OFF"
	}
	return fmt.Sprintf("HeatingMode(%d)", int(m))
}

// LevelToMode maps every price level the feed can return to a hub mode.
var LevelToMode = map[PriceLevel]HeatingMode{
	LevelVeryCheap:     ModeComfort,
	LevelCheap:         ModeComfort,
	LevelNormal:        ModeEco,
	LevelExpensive:     ModeAway,
	LevelVeryExpensive: ModeAway,
}

// Entry is a single transition in a week profile.
type Entry struct {
	Hour   int
	Minute int
	Mode   HeatingMode
}

// Token encodes the entry as HHMMM, the format the hub expects.
func (e Entry) Token() string {
	return fmt.Sprintf("%02d%02d%d", e.Hour, e.Minute, int(e.Mode))
}

// WeekProfile holds one midnight entry per day, Monday first.
type WeekProfile []Entry

func (w WeekProfile) Tokens() []string {
	tokens := make([]string, len(w))
	for i, e := range w {
		tokens[i] = e.Token()
	}
	return tokens
}

func (w WeekProfile) String() string {
	return strings.Join(w.Tokens(), ",")
}
