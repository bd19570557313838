package attain

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// POAggregate is the class-level statistics of one program outcome over the
// students with a known attainment. Count says how many students
// contributed, so a PO attained by 2 of 40 students is not presented like
// one attained by all 40.
type POAggregate struct {
	Mean   Fraction `json:"mean"`
	Median Fraction `json:"median"`
	StdDev Fraction `json:"std_dev"`
	Count  int      `json:"count"`
}

// ClassAggregate is derived from one batch of student outcomes; a new batch
// produces a new aggregate, nothing is mutated in place.
type ClassAggregate struct {
	Students     int                    `json:"students"`
	ClassGPA     Fraction               `json:"class_gpa"`
	GradeCounts  map[string]int         `json:"grade_counts"`
	POAggregates map[string]POAggregate `json:"po_aggregates"`
}

// Aggregate computes the class-level view of a batch. Absent attainments
// never enter a denominator: the mean over k known values is the plain
// arithmetic mean no matter how many Absent values are interspersed.
func Aggregate(pos []string, outcomes []StudentOutcome) ClassAggregate {
	agg := ClassAggregate{
		Students:     len(outcomes),
		GradeCounts:  make(map[string]int),
		POAggregates: make(map[string]POAggregate, len(pos)),
	}

	points := make([]float64, 0, len(outcomes))
	for _, o := range outcomes {
		agg.GradeCounts[o.Grade.Grade]++
		points = append(points, o.Grade.Points)
	}
	if len(points) > 0 {
		agg.ClassGPA = NewFraction(stat.Mean(points, nil))
	} else {
		agg.ClassGPA = NoFraction()
	}

	for _, po := range pos {
		vals := make([]float64, 0, len(outcomes))
		for _, o := range outcomes {
			if att := o.POAttainments[po]; att.Known() {
				vals = append(vals, att.Value)
			}
		}
		if len(vals) == 0 {
			agg.POAggregates[po] = POAggregate{
				Mean:   NoFraction(),
				Median: NoFraction(),
				StdDev: NoFraction(),
			}
			continue
		}
		sort.Float64s(vals)
		pa := POAggregate{
			Mean:   NewFraction(stat.Mean(vals, nil)),
			Median: NewFraction(median(vals)),
			Count:  len(vals),
		}
		if len(vals) > 1 {
			pa.StdDev = NewFraction(stat.StdDev(vals, nil))
		} else {
			pa.StdDev = NewFraction(0)
		}
		agg.POAggregates[po] = pa
	}
	return agg
}

// median expects vals sorted. Even-count samples take the midpoint of the two
// middle values.
func median(vals []float64) float64 {
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
