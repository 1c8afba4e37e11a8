package model

import "time"

// Term numbers are 1-indexed and bounded to 1..3. Exactly one term is
// current once any term exists; only the term service flips the flag.
type Term struct {
	ID        string    `json:"id"`
	StartYear int       `json:"start_year"`
	EndYear   int       `json:"end_year"`
	Term      int       `json:"term"`
	Current   bool      `json:"current"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Next computes the term that follows t: 1→2→3, then wrapping to term 1 of
// the next session with both years advanced.
func (t Term) Next() Term {
	next := Term{
		StartYear: t.StartYear,
		EndYear:   t.EndYear,
		Term:      t.Term + 1,
		Current:   true,
	}
	if t.Term >= 3 {
		next.Term = 1
		next.StartYear++
		next.EndYear++
	}
	return next
}
