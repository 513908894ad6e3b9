package coverage

import (
	"sort"
	"time"

	"maintenance-checklist-backend/internal/model"
	"maintenance-checklist-backend/internal/schedule"
)

// ByFrequency rolls the classified occurrences up into one Counts per
// frequency plus an overall total.
func ByFrequency(results []Result) (perFreq map[schedule.Frequency]Counts, overall Counts) {
	perFreq = make(map[schedule.Frequency]Counts, len(schedule.Frequencies))
	for _, f := range schedule.Frequencies {
		perFreq[f] = Counts{}
	}
	for _, r := range results {
		c := perFreq[r.Checkpoint.Frequency]
		c.add(r.Status)
		perFreq[r.Checkpoint.Frequency] = c
		overall.add(r.Status)
	}
	return perFreq, overall
}

// MachineCounts carries per-machine coverage, with a per-shift
// sub-breakdown populated for Daily queries.
type MachineCounts struct {
	MachineID   string                    `json:"machineId"`
	MachineName string                    `json:"machineName"`
	Counts      Counts                    `json:"counts"`
	ByShift     map[schedule.Shift]Counts `json:"byShift,omitempty"`
}

// ByMachine groups occurrence results per machine. withShifts adds the
// A/B/C sub-buckets and only makes sense for Daily result sets.
func ByMachine(results []Result, machines []model.Machine, withShifts bool) []MachineCounts {
	byID := make(map[string]*MachineCounts, len(machines))
	ordered := make([]*MachineCounts, 0, len(machines))
	for _, m := range machines {
		mc := &MachineCounts{MachineID: m.ID, MachineName: m.Name}
		if withShifts {
			mc.ByShift = map[schedule.Shift]Counts{
				schedule.ShiftA: {}, schedule.ShiftB: {}, schedule.ShiftC: {},
			}
		}
		byID[m.ID] = mc
		ordered = append(ordered, mc)
	}

	for _, r := range results {
		mc, ok := byID[r.Checkpoint.MachineID]
		if !ok {
			continue
		}
		mc.Counts.add(r.Status)
		if withShifts && r.Shift != schedule.ShiftNone {
			sc := mc.ByShift[r.Shift]
			sc.add(r.Status)
			mc.ByShift[r.Shift] = sc
		}
	}

	out := make([]MachineCounts, 0, len(ordered))
	for _, mc := range ordered {
		out = append(out, *mc)
	}
	return out
}

// DepartmentCounts is the done/pending rollup for one department.
type DepartmentCounts struct {
	DepartmentID   string `json:"departmentId"`
	DepartmentName string `json:"departmentName"`
	Counts         Counts `json:"counts"`
}

// ByDepartment groups occurrence results by the owning checkpoint's
// department. Departments with no checkpoints report zero counts.
func ByDepartment(results []Result, departments []model.Department) []DepartmentCounts {
	byID := make(map[string]*DepartmentCounts, len(departments))
	ordered := make([]*DepartmentCounts, 0, len(departments))
	for _, d := range departments {
		dc := &DepartmentCounts{DepartmentID: d.ID, DepartmentName: d.Name}
		byID[d.ID] = dc
		ordered = append(ordered, dc)
	}
	for _, r := range results {
		if dc, ok := byID[r.Checkpoint.DepartmentID]; ok {
			dc.Counts.add(r.Status)
		}
	}
	out := make([]DepartmentCounts, 0, len(ordered))
	for _, dc := range ordered {
		out = append(out, *dc)
	}
	return out
}

// SummaryRow is one (machine, frequency, shift) line of the dashboard.
type SummaryRow struct {
	MachineID      string             `json:"machineId"`
	Frequency      schedule.Frequency `json:"frequency"`
	Shift          schedule.Shift     `json:"shift,omitempty"`
	RequiredCount  int                `json:"requiredCount"`
	SubmittedCount int                `json:"submittedCount"`
	NotOKCount     int                `json:"notOkCount"`
	PendingCount   int                `json:"pendingCount"`
}

// Summarize flattens occurrence results into per-(machine, frequency,
// shift) rows, ordered deterministically for stable API responses.
// SubmittedCount counts occurrences with any submission; PendingCount
// counts those with none, so RequiredCount = SubmittedCount + PendingCount.
func Summarize(results []Result) []SummaryRow {
	type rowKey struct {
		machineID string
		frequency schedule.Frequency
		shift     schedule.Shift
	}
	rows := make(map[rowKey]*SummaryRow)
	var order []rowKey
	for _, r := range results {
		key := rowKey{machineID: r.Checkpoint.MachineID, frequency: r.Checkpoint.Frequency, shift: r.Shift}
		row, ok := rows[key]
		if !ok {
			row = &SummaryRow{MachineID: key.machineID, Frequency: key.frequency, Shift: key.shift}
			rows[key] = row
			order = append(order, key)
		}
		row.RequiredCount++
		switch r.Status {
		case Pending:
			row.PendingCount++
		case NotOK:
			row.SubmittedCount++
			row.NotOKCount++
		case Done:
			row.SubmittedCount++
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].machineID != order[j].machineID {
			return order[i].machineID < order[j].machineID
		}
		if order[i].frequency != order[j].frequency {
			return order[i].frequency < order[j].frequency
		}
		return order[i].shift < order[j].shift
	})

	out := make([]SummaryRow, 0, len(order))
	for _, key := range order {
		out = append(out, *rows[key])
	}
	return out
}

// OpenCheckpoints returns, per the trailing-window model, the
// checkpoints with no submission inside their frequency's window before
// asOf. latestByCheckpoint maps checkpoint ID to the newest submission
// timestamp; checkpoints absent from the map have never been submitted.
func OpenCheckpoints(checkpoints []model.Checkpoint, latestByCheckpoint map[string]time.Time, asOf time.Time) []model.Checkpoint {
	var open []model.Checkpoint
	for _, cp := range checkpoints {
		windowStart := cp.Frequency.TrailingWindowStart(asOf)
		last, ok := latestByCheckpoint[cp.ID]
		if !ok || last.Before(windowStart) {
			open = append(open, cp)
		}
	}
	return open
}
