package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Validate_Valid(t *testing.T) {
	r := &Record{ID: 1, Task: "Buy milk", Process: ProcessDone, Priority: PriorityLow}
	assert.NoError(t, r.Validate())
}

func TestRecord_Validate_UnsetEnums(t *testing.T) {
	r := &Record{ID: 1, Task: "Buy milk"}
	assert.NoError(t, r.Validate())
}

func TestRecord_Validate_MissingTask(t *testing.T) {
	r := &Record{ID: 1, Task: "   "}
	assert.ErrorIs(t, r.Validate(), ErrTaskRequired)
}

func TestRecord_Validate_BadID(t *testing.T) {
	r := &Record{Task: "x"}
	assert.Error(t, r.Validate())
}

func TestRecordInput_Validate_InvalidEnums(t *testing.T) {
	assert.Error(t, RecordInput{Task: "x", Process: "Doing"}.Validate())
	assert.Error(t, RecordInput{Task: "x", Priority: "Urgent"}.Validate())
}

func TestParseProcess(t *testing.T) {
	cases := map[string]Process{
		"":           ProcessUnset,
		"none":       ProcessUnset,
		"done":       ProcessDone,
		"DONE":       ProcessDone,
		"in process": ProcessInProcess,
		"in_process": ProcessInProcess,
		"In-Process": ProcessInProcess,
		"cancel":     ProcessCancel,
	}
	for in, want := range cases {
		got, err := ParseProcess(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseProcess("closed")
	assert.Error(t, err)
}

func TestParsePriority(t *testing.T) {
	got, err := ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, got)

	got, err = ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityUnset, got)

	_, err = ParsePriority("P0")
	assert.Error(t, err)
}

func TestRecord_JSONOmitsUnsetEnums(t *testing.T) {
	data, err := json.Marshal(Record{ID: 3, Task: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"task":"x"}`, string(data))
}

func TestRecordPatch_ClearSerializesEmptyString(t *testing.T) {
	unset := ProcessUnset
	data, err := json.Marshal(RecordPatch{Process: &unset})
	require.NoError(t, err)
	assert.JSONEq(t, `{"process":""}`, string(data))
}

func TestDiffAndApply(t *testing.T) {
	before := Record{ID: 1, Task: "a", Process: ProcessDone}
	after := Record{ID: 1, Task: "b", Process: ProcessDone, Priority: PriorityHigh}

	p := Diff(before, after)
	assert.NotNil(t, p.Task)
	assert.Nil(t, p.Process)
	assert.NotNil(t, p.Priority)
	assert.Equal(t, after, p.Apply(before))

	assert.True(t, Diff(before, before).Empty())
}
