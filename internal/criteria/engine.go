package criteria

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultEffort is used when a table is created without an effort label.
const DefaultEffort = "STANDARD"

// InitialPhase is the phase every new table starts in.
const InitialPhase = "OBSERVE"

// Saver persists a whole table. The store stamps LastModified.
type Saver interface {
	Save(t *Table) error
}

// Engine applies operations to an in-memory table. Every mutating
// operation appends exactly one log entry and then saves the table.
type Engine struct {
	Store Saver
	Now   func() time.Time
	NewID func() string
}

// New returns an engine that persists through s.
func New(s Saver) Engine {
	return Engine{
		Store: s,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

// logf appends a timestamped entry to the table's log.
func (e Engine) logf(t *Table, format string, args ...any) {
	entry := fmt.Sprintf("[%s] %s", e.now().Format(logTimeFormat), fmt.Sprintf(format, args...))
	t.Log = append(t.Log, entry)
}

const logTimeFormat = "2006-01-02T15:04:05.000Z"

func (e Engine) save(t *Table) error {
	if e.Store == nil {
		return nil
	}
	return e.Store.Save(t)
}

// Create builds a fresh table and saves it over any current one.
// Archiving the previous table is the caller's job.
func (e Engine) Create(request, effort string) (*Table, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, fmt.Errorf("request is required: %w", ErrInvalidArgument)
	}
	effort = strings.ToUpper(strings.TrimSpace(effort))
	if effort == "" {
		effort = DefaultEffort
	}

	now := e.now()
	t := &Table{
		Request:      request,
		Effort:       effort,
		Created:      now,
		LastModified: now,
		Phase:        InitialPhase,
		Iteration:    1,
		Rows:         []Row{},
		Log:          []string{},
	}
	if e.NewID != nil {
		t.ID = e.NewID()
	}
	e.logf(t, "ISC created for: %s", request)

	if err := e.save(t); err != nil {
		return t, err
	}
	return t, nil
}

// AddRow appends a PENDING row with the next id.
func (e Engine) AddRow(t *Table, description string, source Source, parallel bool) (*Row, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("description is required: %w", ErrInvalidArgument)
	}
	if !source.Valid() {
		return nil, fmt.Errorf("source must be EXPLICIT, INFERRED, or IMPLICIT, got %q: %w", source, ErrInvalidArgument)
	}

	t.Rows = append(t.Rows, Row{
		ID:          len(t.Rows) + 1,
		Description: description,
		Source:      source,
		Status:      StatusPending,
		Parallel:    parallel,
		Timestamp:   e.now(),
	})
	row := &t.Rows[len(t.Rows)-1]
	e.logf(t, "Added row %d: %s (%s)", row.ID, description, source)

	return row, e.save(t)
}

// UpdateRowStatus moves a row to status. A reason given with ADJUSTED or
// BLOCKED is kept on the row; without one the reason field is left alone.
func (e Engine) UpdateRowStatus(t *Table, id int, status RowStatus, reason string) (*Row, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("status must be PENDING, ACTIVE, DONE, ADJUSTED, or BLOCKED, got %q: %w", status, ErrInvalidArgument)
	}
	row, err := t.Row(id)
	if err != nil {
		return nil, err
	}

	old := row.Status
	row.Status = status
	setReason(row, status, reason)
	e.logf(t, "Row %d: %s → %s%s", id, old, status, reasonClause(reason))

	return row, e.save(t)
}

// SetVerifyResult records a verification outcome. ADJUSTED and BLOCKED
// force the row's status to match and take the reason; PASS leaves status
// and reason fields untouched and keeps its note in Result.
func (e Engine) SetVerifyResult(t *Table, id int, result VerifyResult, reason string) (*Row, error) {
	if !result.Valid() {
		return nil, fmt.Errorf("result must be PASS, ADJUSTED, or BLOCKED, got %q: %w", result, ErrInvalidArgument)
	}
	row, err := t.Row(id)
	if err != nil {
		return nil, err
	}

	row.VerifyResult = result
	switch result {
	case VerifyAdjusted:
		row.Status = StatusAdjusted
		setReason(row, StatusAdjusted, reason)
	case VerifyBlocked:
		row.Status = StatusBlocked
		setReason(row, StatusBlocked, reason)
	case VerifyPass:
		if reason != "" {
			row.Result = reason
		}
	}
	e.logf(t, "Verify row %d: %s%s", id, result, reasonClause(reason))

	return row, e.save(t)
}

// SetCapability assigns a capability and its glyph to a row.
func (e Engine) SetCapability(t *Table, id int, capability string) (*Row, error) {
	capability = strings.TrimSpace(capability)
	if capability == "" {
		return nil, fmt.Errorf("capability is required: %w", ErrInvalidArgument)
	}
	row, err := t.Row(id)
	if err != nil {
		return nil, err
	}

	c := NewCapability(capability)
	row.Capability = &c
	e.logf(t, "Row %d: capability → %s", id, capability)

	return row, e.save(t)
}

// SetPhase replaces the table's phase.
func (e Engine) SetPhase(t *Table, phase string) error {
	phase = strings.TrimSpace(phase)
	if phase == "" {
		return fmt.Errorf("phase is required: %w", ErrInvalidArgument)
	}
	old := t.Phase
	t.Phase = phase
	e.logf(t, "Phase: %s → %s", old, phase)
	return e.save(t)
}

// IncrementIteration starts the next pass over the criteria.
func (e Engine) IncrementIteration(t *Table) error {
	t.Iteration++
	e.logf(t, "Starting iteration %d", t.Iteration)
	return e.save(t)
}

func setReason(row *Row, status RowStatus, reason string) {
	if reason == "" {
		return
	}
	switch status {
	case StatusAdjusted:
		row.AdjustedReason = reason
	case StatusBlocked:
		row.BlockedReason = reason
	}
}

func reasonClause(reason string) string {
	if reason == "" {
		return ""
	}
	return " (" + reason + ")"
}
