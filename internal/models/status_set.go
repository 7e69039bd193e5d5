package models

import (
	"encoding/json"
	"strings"
)

// StatusSet is an ordered set of task statuses. Its persisted form is a JSON
// array of status names.
type StatusSet []TaskStatus

// NewStatusSet validates raw status names and returns them as a set.
// Unknown names are validation errors; duplicates are collapsed.
func NewStatusSet(raw []string) (StatusSet, error) {
	out := make(StatusSet, 0, len(raw))
	for _, name := range raw {
		status, err := ParseTaskStatus(name)
		if err != nil {
			return nil, Validationf("%v", err)
		}
		out = out.add(status)
	}
	return out, nil
}

// ParseStatusSet decodes a stored status-set payload. Malformed JSON and
// unknown status names are deserialization errors.
func ParseStatusSet(raw string) (StatusSet, error) {
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, WrapDeserialization(err, "malformed status set %q", raw)
	}
	out := make(StatusSet, 0, len(names))
	for _, name := range names {
		status := TaskStatus(name)
		if !IsValidTaskStatus(status) {
			return nil, Deserializationf("unknown status %q in status set", name)
		}
		out = out.add(status)
	}
	return out, nil
}

// Encode returns the persisted JSON form of the set.
func (s StatusSet) Encode() (string, error) {
	names := s.Strings()
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s StatusSet) Contains(status TaskStatus) bool {
	for _, value := range s {
		if value == status {
			return true
		}
	}
	return false
}

// Intersect returns the members of s that also appear in statuses, in s order.
func (s StatusSet) Intersect(statuses []TaskStatus) StatusSet {
	var out StatusSet
	for _, value := range s {
		for _, other := range statuses {
			if value == other {
				out = out.add(value)
				break
			}
		}
	}
	return out
}

func (s StatusSet) Strings() []string {
	if s == nil {
		return nil
	}
	return statusStrings(s)
}

// String renders the set as a comma separated list.
func (s StatusSet) String() string {
	return strings.Join(s.Strings(), ", ")
}

func (s StatusSet) add(status TaskStatus) StatusSet {
	if s.Contains(status) {
		return s
	}
	return append(s, status)
}
