package analytics

import (
	"math"
	"sort"

	"interview-coach-service/internal/domain"
)

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance is the population variance.
func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func distribution(xs []float64) domain.Distribution {
	if len(xs) == 0 {
		return domain.Distribution{}
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	v := variance(xs)
	return domain.Distribution{
		Count:    len(xs),
		Mean:     round2(mean(xs)),
		Median:   round2(median(xs)),
		Variance: round2(v),
		StdDev:   round2(math.Sqrt(v)),
		Min:      round2(lo),
		Max:      round2(hi),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// rankAreas orders labels by frequency, ties broken by first appearance.
func rankAreas(labels []string, limit int) []domain.AreaCount {
	counts := map[string]int{}
	first := map[string]int{}
	for i, l := range labels {
		if l == "" {
			continue
		}
		if _, ok := first[l]; !ok {
			first[l] = i
		}
		counts[l]++
	}
	out := make([]domain.AreaCount, 0, len(counts))
	for area, n := range counts {
		out = append(out, domain.AreaCount{Area: area, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return first[out[i].Area] < first[out[j].Area]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
