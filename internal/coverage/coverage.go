// Package coverage matches required checkpoint occurrences against
// actual submissions and classifies each as done, pending or not-ok.
// It is the single parameterized evaluator behind every dashboard;
// callers fetch rows through the store and aggregate here, in memory.
package coverage

import (
	"time"

	"maintenance-checklist-backend/internal/model"
	"maintenance-checklist-backend/internal/schedule"
)

// Status classifies one occurrence.
type Status int

const (
	// Pending means no submission matched the occurrence.
	Pending Status = iota
	// Done means the matching submission has both statuses "ok".
	Done
	// NotOK means a submission matched but at least one status is not "ok".
	NotOK
)

// Counts aggregates occurrence classifications. Total and Done are the
// two guaranteed-consistent numbers; Remaining is always Total-Done.
// NotOK is an independent breakdown of the remaining occurrences that
// do have a submission.
type Counts struct {
	Total     int `json:"total"`
	Done      int `json:"done"`
	Remaining int `json:"remaining"`
	NotOK     int `json:"notOk"`
}

func (c *Counts) add(st Status) {
	c.Total++
	switch st {
	case Done:
		c.Done++
	case NotOK:
		c.NotOK++
	}
	c.Remaining = c.Total - c.Done
}

// Result is one classified occurrence of one checkpoint.
type Result struct {
	Checkpoint  *model.Checkpoint
	BucketStart time.Time
	Shift       schedule.Shift
	Status      Status
	// Submission is the winning (latest by timestamp) submission for
	// the occurrence, nil when Pending.
	Submission *model.Submission
}

// occurrenceKey identifies one occurrence. The bucket start is keyed
// by Unix seconds because time.Time map keys also compare wall clock
// and location, and submissions read back from the database carry a
// different location than the query range.
type occurrenceKey struct {
	checkpointID string
	bucketStart  int64
	shift        schedule.Shift
}

// submissionShift returns the stored shift label, falling back to the
// boundary table when the background assignor has not visited the row yet.
func submissionShift(s *model.Submission, at time.Time) schedule.Shift {
	if s.Shift != schedule.ShiftNone {
		return s.Shift
	}
	return schedule.ShiftFor(at)
}

// Evaluate enumerates the required occurrences of every checkpoint over
// [from, to] and classifies each against the given submissions. When
// several submissions match one occurrence the latest by timestamp wins.
// A machine with zero checkpoints simply contributes zero occurrences.
// Submission timestamps are interpreted in the range's location.
func Evaluate(checkpoints []model.Checkpoint, submissions []model.Submission, from, to time.Time) []Result {
	loc := from.Location()

	latest := make(map[occurrenceKey]*model.Submission)
	for i := range submissions {
		sub := &submissions[i]
		if !sub.Frequency.Valid() {
			continue
		}
		at := sub.SubmissionDate.In(loc)
		key := occurrenceKey{
			checkpointID: sub.CheckpointID,
			bucketStart:  schedule.BucketStart(sub.Frequency, at).Unix(),
		}
		if sub.Frequency == schedule.FreqDaily {
			key.shift = submissionShift(sub, at)
		}
		if prev, ok := latest[key]; !ok || sub.SubmissionDate.After(prev.SubmissionDate) {
			latest[key] = sub
		}
	}

	var results []Result
	for i := range checkpoints {
		cp := &checkpoints[i]
		for _, occ := range schedule.Occurrences(cp.Frequency, from, to) {
			key := occurrenceKey{checkpointID: cp.ID, bucketStart: occ.BucketStart.Unix(), shift: occ.Shift}
			r := Result{
				Checkpoint:  cp,
				BucketStart: occ.BucketStart,
				Shift:       occ.Shift,
				Status:      Pending,
			}
			if sub, ok := latest[key]; ok {
				r.Submission = sub
				if sub.Done() {
					r.Status = Done
				} else {
					r.Status = NotOK
				}
			}
			results = append(results, r)
		}
	}
	return results
}
