// Package health scores a user's financial health from a monthly snapshot.
//
// The pipeline is Input -> Metrics -> score and Status. Everything here is pure
// and safe for concurrent use.
//
// Scores are clamped to 0..100, but the buckets add up to at most 95:
// utilization earns its full 15 points only strictly below 10%, and exactly 10%
// falls in the 10..30 band worth 10. A strong profile at 10% utilization
// therefore scores 90.
package health

// Result is the full outcome of a scoring run.
type Result struct {
	Metrics
	FinalScore float64   `json:"final_score"`
	Status     Status    `json:"status"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Compute validates in, derives its metrics and scores them.
func Compute(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	m := Derive(in)
	score, status, b := Score(in, m)

	return Result{
		Metrics:    m,
		FinalScore: score,
		Status:     status,
		Breakdown:  b,
	}, nil
}
