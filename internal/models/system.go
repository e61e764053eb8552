package models

type SystemStatus string

const (
	SystemStatusAssigned   SystemStatus = "assigned"
	SystemStatusUnassigned SystemStatus = "unassigned"
)

// EmployeeRef is the summary the upstream service embeds when a system
// is assigned.
type EmployeeRef struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	EmployeeID string `json:"employeeID"`
	Email      string `json:"email,omitempty"`
}

type System struct {
	ID         string       `json:"_id"`
	Name       string       `json:"name"`
	Parts      []string     `json:"parts"`
	AssignedTo *EmployeeRef `json:"assignedTo,omitempty"`
}

// Status is derived from the presence of an assignee; the upstream
// service never stores it independently.
func (s System) Status() SystemStatus {
	if s.AssignedTo != nil {
		return SystemStatusAssigned
	}
	return SystemStatusUnassigned
}
