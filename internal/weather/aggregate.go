package weather

import (
	"math"
	"time"
)

// ForecastSample is one timestamped point of a multi-point forecast payload.
type ForecastSample struct {
	Timestamp   time.Time
	Temperature float64
	Condition   Condition
	Humidity    float64
	WindSpeedMS float64
	Pop         float64 // probability of precipitation, 0..1
}

// GroupForecast buckets samples by calendar date in loc and keeps the first
// maxDays distinct dates in order of first appearance. For each date the high
// is the max temperature, the low the min, and the condition the most frequent
// category; ties go to the category that appeared first.
func GroupForecast(samples []ForecastSample, loc *time.Location, maxDays int) []ForecastDay {
	if loc == nil {
		loc = time.Local
	}

	type bucket struct {
		date    time.Time
		samples []ForecastSample
	}

	var order []string
	buckets := make(map[string]*bucket)
	for _, s := range samples {
		ts := s.Timestamp.In(loc)
		key := ts.Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{date: DateOf(ts)}
			buckets[key] = b
			order = append(order, key)
		}
		b.samples = append(b.samples, s)
	}

	if len(order) > maxDays {
		order = order[:maxDays]
	}

	days := make([]ForecastDay, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		days = append(days, aggregateDay(b.date, b.samples))
	}
	return days
}

func aggregateDay(date time.Time, samples []ForecastSample) ForecastDay {
	high := math.Inf(-1)
	low := math.Inf(1)
	var sumHumidity, sumWind, maxPop float64

	for _, s := range samples {
		high = math.Max(high, s.Temperature)
		low = math.Min(low, s.Temperature)
		sumHumidity += s.Humidity
		sumWind += s.WindSpeedMS
		maxPop = math.Max(maxPop, s.Pop)
	}

	n := float64(len(samples))
	cond := modeCondition(samples)
	humidity := int(math.Round(sumHumidity / n))
	wind := Round1(sumWind / n * 3.6)
	precip := int(math.Round(maxPop * 100))

	return ForecastDay{
		Day:          date.Format("Mon"),
		Date:         date,
		High:         Round1(high),
		Low:          Round1(low),
		Condition:    cond,
		Icon:         IconFor(string(cond)),
		Description:  string(cond),
		Humidity:     &humidity,
		WindSpeed:    &wind,
		PrecipChance: &precip,
	}
}

// modeCondition picks the most frequent condition, first-seen wins on ties.
func modeCondition(samples []ForecastSample) Condition {
	counts := make(map[Condition]int)
	var seen []Condition
	for _, s := range samples {
		if counts[s.Condition] == 0 {
			seen = append(seen, s.Condition)
		}
		counts[s.Condition]++
	}

	best := Condition("")
	bestCount := 0
	for _, c := range seen {
		if counts[c] > bestCount {
			best = c
			bestCount = counts[c]
		}
	}
	return best
}
