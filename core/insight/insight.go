// Package insight runs the advisory class analytics: KMeans performance
// clustering over CO/PO attainment profiles and a linear-regression estimate
// of grade points from CO achievements. Both are best-effort collaborators
// of the attainment engine; their failure never fails a batch.
package insight

import (
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/pkg/errors"
	"github.com/sajari/regression"

	"github.com/FAHMIDA-78/copo/core/attain"
)

// ErrNotEnoughData is returned when a batch is too small (or too sparse) for
// a given analysis.
var ErrNotEnoughData = errors.New("not enough data for analysis")

const defaultClusterCount = 3

// ClusterSummary describes one performance group.
type ClusterSummary struct {
	ID      int                `json:"id"`
	Size    int                `json:"size"`
	AvgGPA  float64            `json:"avg_gpa"`
	Profile map[string]float64 `json:"profile"` // mean scaled feature values
}

// Analysis is the full advisory output for one batch.
type Analysis struct {
	Features    []string           `json:"features"`
	Clusters    []ClusterSummary   `json:"clusters"`
	Assignments map[string]int     `json:"assignments"` // student ID to cluster ID
	Predictions map[string]float64 `json:"predictions"` // student ID to predicted grade points
}

type studentPoint struct {
	id     string
	points float64
	coords clusters.Coordinates
}

func (p studentPoint) Coordinates() clusters.Coordinates { return p.coords }
func (p studentPoint) Distance(c clusters.Coordinates) float64 {
	return p.coords.Distance(c)
}

// featureNames lists the analysis features in declared outcome order: CO
// achievements first, then PO attainments.
func featureNames(m attain.COPOMatrix) []string {
	names := make([]string, 0, len(m.COs)+len(m.POs))
	for _, co := range m.COs {
		names = append(names, co.ID)
	}
	names = append(names, m.POs...)
	return names
}

// featureVector builds a raw feature vector for one student. Absent values
// become 0 here only as analysis input; reported attainments keep their
// three-state form.
func featureVector(o attain.StudentOutcome, m attain.COPOMatrix) []float64 {
	vec := make([]float64, 0, len(m.COs)+len(m.POs))
	for _, co := range m.COs {
		if f := o.COAchievements[co.ID]; f.Known() {
			vec = append(vec, f.Value)
		} else {
			vec = append(vec, 0)
		}
	}
	for _, po := range m.POs {
		if f := o.POAttainments[po]; f.Known() {
			vec = append(vec, f.Value)
		} else {
			vec = append(vec, 0)
		}
	}
	return vec
}

// minMaxScale rescales every feature column to [0, 1] in place. Constant
// columns scale to 0.
func minMaxScale(vecs [][]float64) {
	if len(vecs) == 0 {
		return
	}
	dims := len(vecs[0])
	for d := 0; d < dims; d++ {
		min, max := vecs[0][d], vecs[0][d]
		for _, v := range vecs {
			if v[d] < min {
				min = v[d]
			}
			if v[d] > max {
				max = v[d]
			}
		}
		span := max - min
		for _, v := range vecs {
			if span == 0 {
				v[d] = 0
			} else {
				v[d] = (v[d] - min) / span
			}
		}
	}
}

// Analyze runs clustering and prediction over a processed batch.
func Analyze(res *attain.BatchResult, m attain.COPOMatrix) (*Analysis, error) {
	if len(res.Outcomes) == 0 {
		return nil, ErrNotEnoughData
	}

	a := &Analysis{
		Features:    featureNames(m),
		Assignments: make(map[string]int),
		Predictions: make(map[string]float64),
	}

	if err := clusterStudents(a, res, m); err != nil {
		return nil, err
	}
	// prediction needs more rows than features; skip quietly on small batches
	if err := predictGradePoints(a, res, m); err != nil && !errors.Is(err, ErrNotEnoughData) {
		return nil, err
	}
	return a, nil
}

func clusterStudents(a *Analysis, res *attain.BatchResult, m attain.COPOMatrix) error {
	vecs := make([][]float64, len(res.Outcomes))
	for i, o := range res.Outcomes {
		vecs[i] = featureVector(o, m)
	}
	minMaxScale(vecs)

	var data clusters.Observations
	for i, o := range res.Outcomes {
		data = append(data, studentPoint{
			id:     o.Record.StudentID,
			points: o.Grade.Points,
			coords: vecs[i],
		})
	}

	k := defaultClusterCount
	if len(data) < k {
		k = len(data)
	}
	if k < 2 {
		// a single observation forms a single trivial group
		a.Clusters = []ClusterSummary{summarize(0, data, a.Features)}
		for _, obs := range data {
			a.Assignments[obs.(studentPoint).id] = 0
		}
		return nil
	}

	km := kmeans.New()
	parts, err := km.Partition(data, k)
	if err != nil {
		return errors.Wrap(err, "partitioning students")
	}

	for i, c := range parts {
		a.Clusters = append(a.Clusters, summarize(i, c.Observations, a.Features))
		for _, obs := range c.Observations {
			a.Assignments[obs.(studentPoint).id] = i
		}
	}
	return nil
}

func summarize(id int, obs clusters.Observations, features []string) ClusterSummary {
	cs := ClusterSummary{
		ID:      id,
		Size:    len(obs),
		Profile: make(map[string]float64, len(features)),
	}
	if len(obs) == 0 {
		return cs
	}
	var gpa float64
	sums := make([]float64, len(features))
	for _, o := range obs {
		p := o.(studentPoint)
		gpa += p.points
		for d, v := range p.coords {
			sums[d] += v
		}
	}
	cs.AvgGPA = gpa / float64(len(obs))
	for d, name := range features {
		cs.Profile[name] = sums[d] / float64(len(obs))
	}
	return cs
}

func predictGradePoints(a *Analysis, res *attain.BatchResult, m attain.COPOMatrix) error {
	if len(m.COs) < 2 || len(res.Outcomes) <= len(m.COs)+1 {
		return ErrNotEnoughData
	}

	r := new(regression.Regression)
	r.SetObserved("grade_points")
	for i, co := range m.COs {
		r.SetVar(i, co.ID)
	}

	feats := make(map[string][]float64, len(res.Outcomes))
	for _, o := range res.Outcomes {
		vec := make([]float64, len(m.COs))
		for i, co := range m.COs {
			if f := o.COAchievements[co.ID]; f.Known() {
				vec[i] = f.Value
			}
		}
		feats[o.Record.StudentID] = vec
		r.Train(regression.DataPoint(o.Grade.Points, vec))
	}
	if err := r.Run(); err != nil {
		return errors.Wrap(err, "fitting regression")
	}

	for id, vec := range feats {
		pred, err := r.Predict(vec)
		if err != nil {
			return errors.Wrap(err, "predicting grade points")
		}
		if pred < 0 {
			pred = 0
		} else if pred > 4 {
			pred = 4
		}
		a.Predictions[id] = pred
	}
	return nil
}
