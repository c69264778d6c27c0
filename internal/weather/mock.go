package weather

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var (
	mockCurrentConditions  = []Condition{ConditionClear, ConditionClouds, ConditionRain, ConditionSnow, ConditionThunderstorm}
	mockForecastConditions = []Condition{ConditionClear, ConditionClouds, ConditionRain, ConditionSnow, ConditionPartlyCloudy}
)

// MockIconCode is the provider icon code attached to synthesized readings.
const MockIconCode = "01d"

// MockGenerator synthesizes plausible weather for demo mode and as the
// fallback when a live provider fails. It is not meant to be unpredictable.
type MockGenerator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	clock clockwork.Clock
}

// NewMockGenerator creates a generator. A nil rng or clock selects a randomly
// seeded source and the real clock.
func NewMockGenerator(rng *rand.Rand, clock clockwork.Clock) *MockGenerator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MockGenerator{rng: rng, clock: clock}
}

// intBetween returns a uniform integer in [lo, hi]. Caller holds g.mu.
func (g *MockGenerator) intBetween(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

// Current returns a synthetic reading for city.
//
//	temperature  uniform int in [5,35]
//	humidity     uniform int in [30,80]
//	wind         uniform real in [5,25], one decimal
//	high / low   temperature ± uniform int in [2,8]
func (g *MockGenerator) Current(city string) CurrentReading {
	g.mu.Lock()
	defer g.mu.Unlock()

	cond := mockCurrentConditions[g.rng.IntN(len(mockCurrentConditions))]
	temp := g.intBetween(5, 35)
	humidity := g.intBetween(30, 80)
	wind := Round1(5 + g.rng.Float64()*20)
	high := temp + g.intBetween(2, 8)
	low := temp - g.intBetween(2, 8)

	return CurrentReading{
		City:        TitleCase(city),
		Temperature: float64(temp),
		Condition:   cond,
		Description: string(cond),
		Humidity:    humidity,
		WindSpeed:   wind,
		High:        float64(high),
		Low:         float64(low),
		IconCode:    MockIconCode,
	}
}

// Forecast returns ForecastDays synthetic days starting today.
// high is a uniform int in [18,32] and low = high - uniform int in [5,12].
func (g *MockGenerator) Forecast() []ForecastDay {
	g.mu.Lock()
	defer g.mu.Unlock()

	today := DateOf(g.clock.Now())
	days := make([]ForecastDay, 0, ForecastDays)
	for i := 0; i < ForecastDays; i++ {
		date := today.AddDate(0, 0, i)
		cond := mockForecastConditions[g.rng.IntN(len(mockForecastConditions))]
		high := g.intBetween(18, 32)
		low := high - g.intBetween(5, 12)

		days = append(days, ForecastDay{
			Day:       date.Format("Mon"),
			Date:      date,
			High:      float64(high),
			Low:       float64(low),
			Condition: cond,
			Icon:      IconFor(string(cond)),
		})
	}
	return days
}

// Now exposes the generator clock so callers stamping mock data agree with it.
func (g *MockGenerator) Now() time.Time {
	return g.clock.Now()
}
