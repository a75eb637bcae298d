package model

import (
	"fmt"
	"strings"
)

// Priority is the importance of a record. The zero value means unset.
type Priority string

const (
	PriorityUnset  Priority = ""
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
	PriorityLow    Priority = "Low"
)

var validPriorities = []Priority{PriorityNormal, PriorityHigh, PriorityLow}

func Priorities() []Priority {
	return append([]Priority(nil), validPriorities...)
}

func (p Priority) Valid() bool {
	if p == PriorityUnset {
		return true
	}
	for _, v := range validPriorities {
		if p == v {
			return true
		}
	}
	return false
}

func (p Priority) String() string {
	return string(p)
}

func ParsePriority(s string) (Priority, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" || norm == "none" {
		return PriorityUnset, nil
	}
	for _, v := range validPriorities {
		if strings.ToLower(string(v)) == norm {
			return v, nil
		}
	}
	return PriorityUnset, fmt.Errorf("invalid priority %q: must be one of Normal, High, Low", s)
}
