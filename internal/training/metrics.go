package training

import (
	"math"
	"sort"
)

// Ranking and equity-curve metric helpers for candidate validation.
// They operate on parallel slices: per-row probabilities, labels, signed
// returns, and calendar-date buckets.

// AUC computes the area under the ROC curve with a rank-based estimator
// (tie-aware Mann-Whitney). Single-class labels return the uninformative
// default of 0.5.
func AUC(probs []float64, labels []int) float64 {
	pos, neg := 0, 0
	for _, l := range labels {
		if l == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0.5
	}

	type scored struct {
		prob  float64
		label int
	}
	items := make([]scored, len(probs))
	for i := range probs {
		items[i] = scored{probs[i], labels[i]}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].prob < items[j].prob })

	// Assign average ranks to ties, then sum positive ranks.
	ranks := make([]float64, len(items))
	i := 0
	for i < len(items) {
		j := i
		for j < len(items) && items[j].prob == items[i].prob {
			j++
		}
		avgRank := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[k] = avgRank
		}
		i = j
	}

	var posRankSum float64
	for k, it := range items {
		if it.label == 1 {
			posRankSum += ranks[k]
		}
	}

	p := float64(pos)
	n := float64(neg)
	return (posRankSum - p*(p+1)/2) / (p * n)
}

// PrecisionAtKByDay groups rows by calendar date, takes the top-k rows by
// predicted probability within each day, averages their true labels, and
// returns the mean across days. Days with fewer than k rows use all the
// rows they have.
func PrecisionAtKByDay(dates []string, probs []float64, labels []int, k int) float64 {
	byDay := groupByDay(dates)
	if len(byDay) == 0 {
		return 0
	}

	var daySum float64
	for _, idxs := range byDay {
		top := topKByProb(idxs, probs, k)
		var labelSum float64
		for _, i := range top {
			labelSum += float64(labels[i])
		}
		daySum += labelSum / float64(len(top))
	}
	return daySum / float64(len(byDay))
}

// DailyTopKReturns simulates the daily strategy used for equity metrics:
// for each day, equally weight the k rows with the highest predicted
// probability and record the mean of their signed returns. The series is
// ordered by date.
func DailyTopKReturns(dates []string, probs []float64, returns []float64, k int) []float64 {
	byDay := groupByDay(dates)

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	series := make([]float64, 0, len(days))
	for _, day := range days {
		top := topKByProb(byDay[day], probs, k)
		var sum float64
		for _, i := range top {
			sum += returns[i]
		}
		series = append(series, sum/float64(len(top)))
	}
	return series
}

// HitRate is the mean true label.
func HitRate(labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	var sum float64
	for _, l := range labels {
		sum += float64(l)
	}
	return sum / float64(len(labels))
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Sharpe annualizes the mean/std ratio of a daily return series with
// sqrt(252). Fewer than 2 points or zero variance yields 0.
func Sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := Mean(returns)
	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(252)
}

// MaxDrawdown is the most negative value of (cum - runningMax)/runningMax
// over the cumulative-product equity curve of the return series.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	cum := 1.0
	runningMax := 1.0
	maxDD := 0.0

	for _, r := range returns {
		cum *= 1 + r
		if cum > runningMax {
			runningMax = cum
		}
		dd := (cum - runningMax) / runningMax
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func groupByDay(dates []string) map[string][]int {
	byDay := make(map[string][]int)
	for i, d := range dates {
		byDay[d] = append(byDay[d], i)
	}
	return byDay
}

func topKByProb(idxs []int, probs []float64, k int) []int {
	sorted := make([]int, len(idxs))
	copy(sorted, idxs)
	sort.SliceStable(sorted, func(a, b int) bool {
		return probs[sorted[a]] > probs[sorted[b]]
	})
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}
