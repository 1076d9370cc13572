package criteria

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Source records where a criterion came from.
type Source string

const (
	SourceExplicit Source = "EXPLICIT" // Asked for directly
	SourceInferred Source = "INFERRED" // Inferred from context
	SourceImplicit Source = "IMPLICIT" // Implicit quality bar
)

// RowStatus is the workflow state of a criterion row.
type RowStatus string

const (
	StatusPending  RowStatus = "PENDING"
	StatusActive   RowStatus = "ACTIVE"
	StatusDone     RowStatus = "DONE"
	StatusAdjusted RowStatus = "ADJUSTED"
	StatusBlocked  RowStatus = "BLOCKED"
)

// VerifyResult is the outcome of an explicit verification step.
type VerifyResult string

const (
	VerifyPass     VerifyResult = "PASS"
	VerifyAdjusted VerifyResult = "ADJUSTED"
	VerifyBlocked  VerifyResult = "BLOCKED"
)

// Statuses lists every row status in display order.
var Statuses = []RowStatus{StatusPending, StatusActive, StatusDone, StatusAdjusted, StatusBlocked}

// ParseSource upper-cases s and checks it against the known sources.
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToUpper(strings.TrimSpace(s)))
	switch src {
	case SourceExplicit, SourceInferred, SourceImplicit:
		return src, nil
	}
	return "", fmt.Errorf("source must be EXPLICIT, INFERRED, or IMPLICIT, got %q: %w", s, ErrInvalidArgument)
}

// ParseStatus upper-cases s and checks it against the known statuses.
func ParseStatus(s string) (RowStatus, error) {
	st := RowStatus(strings.ToUpper(strings.TrimSpace(s)))
	if st.Valid() {
		return st, nil
	}
	return "", fmt.Errorf("status must be PENDING, ACTIVE, DONE, ADJUSTED, or BLOCKED, got %q: %w", s, ErrInvalidArgument)
}

// ParseVerifyResult upper-cases s and checks it against the known results.
func ParseVerifyResult(s string) (VerifyResult, error) {
	r := VerifyResult(strings.ToUpper(strings.TrimSpace(s)))
	if r.Valid() {
		return r, nil
	}
	return "", fmt.Errorf("result must be PASS, ADJUSTED, or BLOCKED, got %q: %w", s, ErrInvalidArgument)
}

func (s Source) Valid() bool {
	return s == SourceExplicit || s == SourceInferred || s == SourceImplicit
}

func (s RowStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

func (r VerifyResult) Valid() bool {
	return r == VerifyPass || r == VerifyAdjusted || r == VerifyBlocked
}

// Capability is an assigned resolver. A row either has none (nil) or
// one with both a name and the glyph derived from it.
type Capability struct {
	name string
	icon string
}

// NewCapability derives the glyph for name from its category.
func NewCapability(name string) Capability {
	return Capability{name: name, icon: IconFor(name)}
}

// Name returns the full dotted capability, e.g. "research.perplexity".
func (c Capability) Name() string { return c.name }

// Icon returns the display glyph for the capability's category.
func (c Capability) Icon() string { return c.icon }

// ShortName returns the part after the last dot.
func (c Capability) ShortName() string {
	if i := strings.LastIndex(c.name, "."); i >= 0 && i < len(c.name)-1 {
		return c.name[i+1:]
	}
	return c.name
}

// Row is one verifiable criterion in a table.
type Row struct {
	ID             int
	Description    string
	Source         Source
	Status         RowStatus
	Parallel       bool
	Capability     *Capability
	Result         string
	AdjustedReason string
	BlockedReason  string
	VerifyResult   VerifyResult
	Timestamp      time.Time
}

// rowDoc is the on-disk shape of a Row.
type rowDoc struct {
	ID             int          `json:"id"`
	Description    string       `json:"description"`
	Source         Source       `json:"source"`
	Status         RowStatus    `json:"status"`
	Parallel       bool         `json:"parallel"`
	Capability     string       `json:"capability,omitempty"`
	CapabilityIcon string       `json:"capabilityIcon,omitempty"`
	Result         string       `json:"result,omitempty"`
	AdjustedReason string       `json:"adjustedReason,omitempty"`
	BlockedReason  string       `json:"blockedReason,omitempty"`
	VerifyResult   VerifyResult `json:"verifyResult,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
}

// MarshalJSON flattens the capability into capability/capabilityIcon.
func (r Row) MarshalJSON() ([]byte, error) {
	d := rowDoc{
		ID:             r.ID,
		Description:    r.Description,
		Source:         r.Source,
		Status:         r.Status,
		Parallel:       r.Parallel,
		Result:         r.Result,
		AdjustedReason: r.AdjustedReason,
		BlockedReason:  r.BlockedReason,
		VerifyResult:   r.VerifyResult,
		Timestamp:      r.Timestamp,
	}
	if r.Capability != nil {
		d.Capability = r.Capability.name
		d.CapabilityIcon = r.Capability.icon
	}
	return json.Marshal(d)
}

// UnmarshalJSON restores the capability pairing. An icon without a
// capability is dropped; a capability without an icon gets one derived.
func (r *Row) UnmarshalJSON(data []byte) error {
	var d rowDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*r = Row{
		ID:             d.ID,
		Description:    d.Description,
		Source:         d.Source,
		Status:         d.Status,
		Parallel:       d.Parallel,
		Result:         d.Result,
		AdjustedReason: d.AdjustedReason,
		BlockedReason:  d.BlockedReason,
		VerifyResult:   d.VerifyResult,
		Timestamp:      d.Timestamp,
	}
	if d.Capability != "" {
		c := NewCapability(d.Capability)
		if d.CapabilityIcon != "" {
			c.icon = d.CapabilityIcon
		}
		r.Capability = &c
	}
	return nil
}

// Table is the container for one generation of criteria.
type Table struct {
	ID           string    `json:"id,omitempty"`
	Request      string    `json:"request"`
	Effort       string    `json:"effort"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"lastModified"`
	Phase        string    `json:"phase"`
	Iteration    int       `json:"iteration"`
	Rows         []Row     `json:"rows"`
	Log          []string  `json:"log"`
}

// Row returns the row with the given id.
func (t *Table) Row(id int) (*Row, error) {
	for i := range t.Rows {
		if t.Rows[i].ID == id {
			return &t.Rows[i], nil
		}
	}
	return nil, fmt.Errorf("row %d: %w", id, ErrNotFound)
}

// Summary counts rows by status.
type Summary struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	Active         int `json:"active"`
	Done           int `json:"done"`
	Adjusted       int `json:"adjusted"`
	Blocked        int `json:"blocked"`
	Parallelizable int `json:"parallelizable"`
}
