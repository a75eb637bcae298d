package model

import (
	"fmt"
	"strings"
)

// Process is the progress state of a record. The zero value means unset.
type Process string

const (
	ProcessUnset     Process = ""
	ProcessDone      Process = "Done"
	ProcessInProcess Process = "In process"
	ProcessCancel    Process = "Cancel"
)

var validProcesses = []Process{ProcessDone, ProcessInProcess, ProcessCancel}

// Processes returns the settable process values in display order.
func Processes() []Process {
	return append([]Process(nil), validProcesses...)
}

func (p Process) Valid() bool {
	if p == ProcessUnset {
		return true
	}
	for _, v := range validProcesses {
		if p == v {
			return true
		}
	}
	return false
}

func (p Process) String() string {
	return string(p)
}

// ParseProcess accepts any casing and the aliases "in_process"/"in-process".
func ParseProcess(s string) (Process, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	if norm == "" || norm == "none" {
		return ProcessUnset, nil
	}
	for _, v := range validProcesses {
		if strings.ToLower(string(v)) == norm {
			return v, nil
		}
	}
	return ProcessUnset, fmt.Errorf("invalid status %q: must be one of Done, In process, Cancel", s)
}
