package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"maintenance-checklist-backend/internal/coverage"
	"maintenance-checklist-backend/internal/model"
	"maintenance-checklist-backend/internal/schedule"
	"maintenance-checklist-backend/internal/store"
)

const dateLayout = "2006-01-02"

// fetchWindow widens [from, to] to whole calendar buckets so every
// submission that could satisfy an occurrence in range is fetched. The
// yearly bucket is the coarsest, so the window spans whole years.
func fetchWindow(from, to time.Time) (time.Time, time.Time) {
	return schedule.BucketStart(schedule.FreqYearly, from),
		schedule.BucketStart(schedule.FreqYearly, to).AddDate(1, 0, 0)
}

// evaluateRange loads an organization's checkpoints and submissions and
// runs the coverage evaluator over [from, to].
func (h *Handler) evaluateRange(c *gin.Context, orgID string, from, to time.Time, cpFilter store.CheckpointFilter) ([]coverage.Result, []model.Checkpoint, bool) {
	cps, err := h.store.Checkpoints(c.Request.Context(), orgID, cpFilter)
	if err != nil {
		abortStoreError(c, err)
		return nil, nil, false
	}

	subFrom, subTo := fetchWindow(from, to)
	subs, err := h.store.SubmissionsInRange(c.Request.Context(), orgID, subFrom, subTo, store.SubmissionFilter{
		MachineID: cpFilter.MachineID,
		Frequency: cpFilter.Frequency,
	})
	if err != nil {
		abortStoreError(c, err)
		return nil, nil, false
	}

	return coverage.Evaluate(cps, subs, from, to), cps, true
}

// GetCoverageCounts reports {total, done, remaining} for the current
// calendar bucket of each frequency, plus an overall rollup. An
// organization with no machines gets zero counts, not a 404.
func (h *Handler) GetCoverageCounts(c *gin.Context) {
	orgID := c.Param("org_id")

	filter := store.CheckpointFilter{}
	if fq := c.Query("frequency"); fq != "" {
		freq, err := schedule.ParseFrequency(fq)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Frequency = freq
	}

	now := time.Now()
	results, _, ok := h.evaluateRange(c, orgID, now, now, filter)
	if !ok {
		return
	}

	perFreq, overall := coverage.ByFrequency(results)
	c.JSON(http.StatusOK, gin.H{
		"byFrequency": perFreq,
		"overall":     overall,
	})
}

// GetMachineCounts reports per-machine coverage for the current
// calendar bucket of one frequency, with an A/B/C shift sub-breakdown
// when the frequency is Daily.
func (h *Handler) GetMachineCounts(c *gin.Context) {
	orgID := c.Param("org_id")

	freq, err := schedule.ParseFrequency(c.Query("frequency"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machines, err := h.store.Machines(c.Request.Context(), orgID)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	now := time.Now()
	results, _, ok := h.evaluateRange(c, orgID, now, now, store.CheckpointFilter{Frequency: freq})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, coverage.ByMachine(results, machines, freq == schedule.FreqDaily))
}

// pendingMachineResponse groups still-open checkpoints under their machine.
type pendingMachineResponse struct {
	MachineID   string               `json:"machineId"`
	MachineName string               `json:"machineName"`
	Checkpoints []checkpointResponse `json:"checkpoints"`
}

// GetPendingByMachine lists, per machine, the checkpoints with no
// submission inside their frequency's trailing window before asOf
// (query param "asOf", default now). Reference images are resolved;
// a missing file becomes an empty string, never an error.
func (h *Handler) GetPendingByMachine(c *gin.Context) {
	orgID := c.Param("org_id")

	asOf := time.Now()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'asOf' timestamp format. Use RFC3339."})
			return
		}
		asOf = parsed
	}

	cps, err := h.store.Checkpoints(c.Request.Context(), orgID, store.CheckpointFilter{})
	if err != nil {
		abortStoreError(c, err)
		return
	}
	latest, err := h.store.LatestSubmissionTimes(c.Request.Context(), orgID)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	open := coverage.OpenCheckpoints(cps, latest, asOf)

	ids := make([]string, len(open))
	for i, cp := range open {
		ids[i] = cp.ID
	}
	imgs, err := h.store.ChecklistImages(c.Request.Context(), ids)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	machines, err := h.store.Machines(c.Request.Context(), orgID)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	nameByID := make(map[string]string, len(machines))
	for _, m := range machines {
		nameByID[m.ID] = m.Name
	}

	byMachine := make(map[string]*pendingMachineResponse)
	var order []string
	for _, cp := range open {
		entry, ok := byMachine[cp.MachineID]
		if !ok {
			entry = &pendingMachineResponse{
				MachineID:   cp.MachineID,
				MachineName: nameByID[cp.MachineID],
				Checkpoints: []checkpointResponse{},
			}
			byMachine[cp.MachineID] = entry
			order = append(order, cp.MachineID)
		}
		resp := checkpointResponse{Checkpoint: cp}
		if img, ok := imgs[cp.ID]; ok {
			resp.ReferenceImage = h.media.DataURL(img.Path, img.Name)
		}
		entry.Checkpoints = append(entry.Checkpoints, resp)
	}

	out := make([]pendingMachineResponse, 0, len(order))
	for _, id := range order {
		out = append(out, *byMachine[id])
	}
	c.JSON(http.StatusOK, out)
}

// GetDashboardSummary reports per-(machine, frequency, shift) required,
// submitted and pending counts over a calendar-bucket date range
// (query params "start" and "end", both YYYY-MM-DD, end inclusive).
func (h *Handler) GetDashboardSummary(c *gin.Context) {
	orgID := c.Param("org_id")

	start, err := time.Parse(dateLayout, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'start' date. Use YYYY-MM-DD."})
		return
	}
	end, err := time.Parse(dateLayout, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'end' date. Use YYYY-MM-DD."})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'end' must not be before 'start'"})
		return
	}

	filter := store.CheckpointFilter{MachineID: c.Query("machineId")}
	results, _, ok := h.evaluateRange(c, orgID, start, end, filter)
	if !ok {
		return
	}

	rows := coverage.Summarize(results)
	if rows == nil {
		rows = []coverage.SummaryRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// GetChecklistCountsForDate reports per-(machine, frequency, shift)
// counts including the not-ok breakdown for the buckets containing one
// date (query param "date", YYYY-MM-DD, default today).
func (h *Handler) GetChecklistCountsForDate(c *gin.Context) {
	orgID := c.Param("org_id")

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'date'. Use YYYY-MM-DD."})
			return
		}
		date = parsed
	}

	results, _, ok := h.evaluateRange(c, orgID, date, date, store.CheckpointFilter{})
	if !ok {
		return
	}

	rows := coverage.Summarize(results)
	if rows == nil {
		rows = []coverage.SummaryRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// GetDepartments lists all departments.
func (h *Handler) GetDepartments(c *gin.Context) {
	depts, err := h.store.Departments(c.Request.Context())
	if err != nil {
		abortStoreError(c, err)
		return
	}
	if depts == nil {
		depts = []model.Department{}
	}
	c.JSON(http.StatusOK, depts)
}

// GetDepartmentCounts rolls the current calendar buckets up per
// department.
func (h *Handler) GetDepartmentCounts(c *gin.Context) {
	orgID := c.Param("org_id")

	depts, err := h.store.Departments(c.Request.Context())
	if err != nil {
		abortStoreError(c, err)
		return
	}

	now := time.Now()
	results, _, ok := h.evaluateRange(c, orgID, now, now, store.CheckpointFilter{})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, coverage.ByDepartment(results, depts))
}

// GetOperators lists an organization's users for submitted-by
// dropdowns, excluding administrative roles.
func (h *Handler) GetOperators(c *gin.Context) {
	orgID := c.Param("org_id")
	users, err := h.store.Operators(c.Request.Context(), orgID, []string{"Admin"})
	if err != nil {
		abortStoreError(c, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	c.JSON(http.StatusOK, users)
}
