package criteria

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSaver counts saves and can be told to fail.
type memSaver struct {
	saves int
	err   error
}

func (m *memSaver) Save(t *Table) error {
	if m.err != nil {
		return m.err
	}
	m.saves++
	return nil
}

func testEngine(t *testing.T) (Engine, *memSaver) {
	t.Helper()
	s := &memSaver{}
	e := New(s)
	e.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC) }
	e.NewID = func() string { return "table-1" }
	return e, s
}

func testTable(t *testing.T, e Engine) *Table {
	t.Helper()
	tbl, err := e.Create("Add dark mode", "STANDARD")
	require.NoError(t, err)
	return tbl
}

func lastLog(tbl *Table) string {
	return tbl.Log[len(tbl.Log)-1]
}

func TestCreate(t *testing.T) {
	e, s := testEngine(t)

	tbl, err := e.Create("Add dark mode", "STANDARD")
	require.NoError(t, err)
	assert.Equal(t, "OBSERVE", tbl.Phase)
	assert.Equal(t, 1, tbl.Iteration)
	assert.Empty(t, tbl.Rows)
	require.Len(t, tbl.Log, 1)
	assert.Equal(t, "[2026-01-02T03:04:05.006Z] ISC created for: Add dark mode", tbl.Log[0])
	assert.Equal(t, "table-1", tbl.ID)
	assert.Equal(t, 1, s.saves)
}

func TestCreate_DefaultEffort(t *testing.T) {
	e, _ := testEngine(t)
	tbl, err := e.Create("Something", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultEffort, tbl.Effort)

	tbl, err = e.Create("Something", " deep ")
	require.NoError(t, err)
	assert.Equal(t, "DEEP", tbl.Effort)
}

func TestCreate_EmptyRequest(t *testing.T) {
	e, s := testEngine(t)
	_, err := e.Create("  ", "STANDARD")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Zero(t, s.saves, "invalid create must not persist")
}

func TestAddRow_AssignsSequentialIDs(t *testing.T) {
	e, _ := testEngine(t)
	tbl := testTable(t, e)

	for i := 1; i <= 5; i++ {
		row, err := e.AddRow(tbl, "criterion", SourceExplicit, true)
		require.NoError(t, err)
		require.Equal(t, i, row.ID)
		assert.Equal(t, StatusPending, row.Status)
	}

	// Status changes never free an id.
	_, err := e.UpdateRowStatus(tbl, 2, StatusBlocked, "waiting")
	require.NoError(t, err)
	row, err := e.AddRow(tbl, "another", SourceImplicit, false)
	require.NoError(t, err)
	assert.Equal(t, 6, row.ID)
	assert.Contains(t, lastLog(tbl), "Added row 6: another (IMPLICIT)")
}

func TestAddRow_InvalidArguments(t *testing.T) {
	e, s := testEngine(t)
	tbl := testTable(t, e)
	before := s.saves

	_, err := e.AddRow(tbl, "", SourceExplicit, true)
	assert.ErrorIs(t, err, ErrInvalidArgument, "empty description")
	_, err = e.AddRow(tbl, "ok", Source("GUESSED"), true)
	assert.ErrorIs(t, err, ErrInvalidArgument, "bad source")

	assert.Empty(t, tbl.Rows)
	assert.Len(t, tbl.Log, 1)
	assert.Equal(t, before, s.saves)
}

func TestUpdateRowStatus(t *testing.T) {
	e, _ := testEngine(t)
	tbl := testTable(t, e)
	_, err := e.AddRow(tbl, "Toggle works", SourceExplicit, true)
	require.NoError(t, err)

	row, err := e.UpdateRowStatus(tbl, 1, StatusAdjusted, "250ms instead of 200ms")
	require.NoError(t, err)
	assert.Equal(t, StatusAdjusted, row.Status)
	assert.Equal(t, "250ms instead of 200ms", row.AdjustedReason)
	assert.Contains(t, lastLog(tbl), "Row 1: PENDING → ADJUSTED (250ms instead of 200ms)")

	row, err = e.UpdateRowStatus(tbl, 1, StatusBlocked, "")
	require.NoError(t, err)
	assert.Empty(t, row.BlockedReason)
	assert.Regexp(t, `Row 1: ADJUSTED → BLOCKED$`, lastLog(tbl), "reason clause should be omitted")
}

func TestUpdateRowStatus_NotFound(t *testing.T) {
	e, _ := testEngine(t)
	tbl := testTable(t, e)

	_, err := e.UpdateRowStatus(tbl, 42, StatusDone, "")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, tbl.Log, 1, "not found must not log")
}

func TestUpdateRowStatus_InvalidStatus(t *testing.T) {
	e, _ := testEngine(t)
	tbl := testTable(t, e)
	_, err := e.AddRow(tbl, "x", SourceExplicit, true)
	require.NoError(t, err)

	_, err = e.UpdateRowStatus(tbl, 1, RowStatus("FINISHED"), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSetVerifyResult_ForcesStatus(t *testing.T) {
	cases := []struct {
		result VerifyResult
		status RowStatus
	}{
		{VerifyAdjusted, StatusAdjusted},
		{VerifyBlocked, StatusBlocked},
	}
	for _, tc := range cases {
		t.Run(string(tc.result), func(t *testing.T) {
			e, _ := testEngine(t)
			tbl := testTable(t, e)
			_, err := e.AddRow(tbl, "x", SourceExplicit, true)
			require.NoError(t, err)
			_, err = e.UpdateRowStatus(tbl, 1, StatusDone, "")
			require.NoError(t, err)

			row, err := e.SetVerifyResult(tbl, 1, tc.result, "needs rework")
			require.NoError(t, err)
			assert.Equal(t, tc.status, row.Status)
			assert.Equal(t, tc.result, row.VerifyResult)

			reason := row.AdjustedReason
			if tc.status == StatusBlocked {
				reason = row.BlockedReason
			}
			assert.Equal(t, "needs rework", reason)
		})
	}
}

func TestSetVerifyResult_PassKeepsStatus(t *testing.T) {
	e, _ := testEngine(t)
	tbl := testTable(t, e)
	_, err := e.AddRow(tbl, "x", SourceExplicit, true)
	require.NoError(t, err)
	_, err = e.UpdateRowStatus(tbl, 1, StatusActive, "")
	require.NoError(t, err)

	row, err := e.SetVerifyResult(tbl, 1, VerifyPass, "")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, row.Status, "PASS must not change status")
	assert.Equal(t, VerifyPass, row.VerifyResult)
	assert.Regexp(t, `Verify row 1: PASS$`, lastLog(tbl))
}

func TestSetVerifyResult_PassKeepsReasons(t *testing.T) {
	e, _ := testEngine(t)
	tbl := testTable(t, e)
	_, err := e.AddRow(tbl, "Loads fast", SourceExplicit, true)
	require.NoError(t, err)
	_, err = e.AddRow(tbl, "Ships", SourceExplicit, true)
	require.NoError(t, err)

	_, err = e.SetVerifyResult(tbl, 1, VerifyAdjusted, "250ms instead of 200ms")
	require.NoError(t, err)
	_, err = e.SetVerifyResult(tbl, 2, VerifyBlocked, "CI down")
	require.NoError(t, err)

	row, err := e.SetVerifyResult(tbl, 1, VerifyPass, "re-measured ok")
	require.NoError(t, err)
	assert.Equal(t, StatusAdjusted, row.Status)
	assert.Equal(t, "250ms instead of 200ms", row.AdjustedReason)
	assert.Empty(t, row.BlockedReason)
	assert.Equal(t, "re-measured ok", row.Result)

	row, err = e.SetVerifyResult(tbl, 2, VerifyPass, "green again")
	require.NoError(t, err)
	assert.Equal(t, "CI down", row.BlockedReason)
	assert.Empty(t, row.AdjustedReason)
	assert.Equal(t, "green again", row.Result)

	md := RenderTable(tbl)
	assert.Contains(t, md, "*(adjusted: 250ms instead of 200ms)*")
	assert.NotContains(t, md, "re-measured ok")
	assert.NotContains(t, md, "green again")
}

func TestSetVerifyResult_NotFound(t *testing.T) {
	e, _ := testEngine(t)
	tbl := testTable(t, e)
	_, err := e.SetVerifyResult(tbl, 3, VerifyPass, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetCapability(t *testing.T) {
	e, _ := testEngine(t)
	tbl := testTable(t, e)
	_, err := e.AddRow(tbl, "a", SourceExplicit, true)
	require.NoError(t, err)
	_, err = e.AddRow(tbl, "b", SourceExplicit, true)
	require.NoError(t, err)

	row, err := e.SetCapability(tbl, 1, "research.perplexity")
	require.NoError(t, err)
	require.NotNil(t, row.Capability)
	assert.Equal(t, "🔬", row.Capability.Icon())
	assert.Equal(t, "research.perplexity", row.Capability.Name())

	row, err = e.SetCapability(tbl, 2, "unknowncat.x")
	require.NoError(t, err)
	assert.Equal(t, DefaultIcon, row.Capability.Icon())
	assert.Contains(t, lastLog(tbl), "Row 2: capability → unknowncat.x")

	_, err = e.SetCapability(tbl, 9, "thinking.x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.SetCapability(tbl, 1, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSetPhaseAndIterate(t *testing.T) {
	e, s := testEngine(t)
	tbl := testTable(t, e)

	require.NoError(t, e.SetPhase(tbl, "THINK"))
	assert.Equal(t, "THINK", tbl.Phase)
	assert.Contains(t, lastLog(tbl), "Phase: OBSERVE → THINK")
	assert.ErrorIs(t, e.SetPhase(tbl, ""), ErrInvalidArgument)

	require.NoError(t, e.IncrementIteration(tbl))
	assert.Equal(t, 2, tbl.Iteration)
	assert.Contains(t, lastLog(tbl), "Starting iteration 2")
	assert.Equal(t, 3, s.saves)
}

func TestSaveFailureSurfaces(t *testing.T) {
	e, s := testEngine(t)
	tbl := testTable(t, e)
	s.err = errors.New("disk full")

	_, err := e.AddRow(tbl, "x", SourceExplicit, true)
	require.Error(t, err)
	// In-memory copy is ahead of disk.
	assert.Len(t, tbl.Rows, 1)
}

func TestEndToEnd(t *testing.T) {
	e, _ := testEngine(t)
	tbl := testTable(t, e)

	row, err := e.AddRow(tbl, "Toggle works", SourceExplicit, true)
	require.NoError(t, err)
	require.Equal(t, 1, row.ID)
	require.Equal(t, StatusPending, row.Status)

	row, err = e.UpdateRowStatus(tbl, 1, StatusDone, "")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, row.Status)
	// create + add + update
	assert.Len(t, tbl.Log, 3)

	assert.Equal(t, Summary{Total: 1, Done: 1}, Summarize(tbl))
}

func TestRowJSON_CapabilityPairing(t *testing.T) {
	c := NewCapability("thinking.ultrathink")
	row := Row{ID: 1, Description: "d", Source: SourceInferred, Status: StatusActive, Parallel: true, Capability: &c}

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"capability":"thinking.ultrathink"`)
	assert.Contains(t, string(data), `"capabilityIcon":"💡"`)

	var orphan Row
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"capabilityIcon":"🔬"}`), &orphan))
	assert.Nil(t, orphan.Capability, "icon without capability must be dropped")

	var derived Row
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"capability":"debate.council"}`), &derived))
	require.NotNil(t, derived.Capability)
	assert.Equal(t, "🗣️", derived.Capability.Icon())
}

func TestParseHelpers(t *testing.T) {
	s, err := ParseSource("inferred")
	require.NoError(t, err)
	assert.Equal(t, SourceInferred, s)
	_, err = ParseSource("nope")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	st, err := ParseStatus("done")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, st)
	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	r, err := ParseVerifyResult(" Blocked ")
	require.NoError(t, err)
	assert.Equal(t, VerifyBlocked, r)
}
