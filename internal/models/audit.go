package models

import "time"

const (
	ActionAssignSystem   = "ASSIGN_SYSTEM"
	ActionUnassignSystem = "UNASSIGN_SYSTEM"
)

type AuditActor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuditDetails struct {
	AssignedTo     string `json:"assignedTo,omitempty"`
	UnassignedFrom string `json:"UnassignedFrom,omitempty"`
	EmployeeEmail  string `json:"employee_email,omitempty"`
}

// AuditEntry is one row of the upstream system log.
type AuditEntry struct {
	ID          string       `json:"_id"`
	ActionType  string       `json:"actionType"`
	Timestamp   time.Time    `json:"timestamp"`
	System      SystemRef    `json:"entityId"`
	PerformedBy AuditActor   `json:"performedBy"`
	Details     AuditDetails `json:"details"`
}

type SystemRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Stats is the dashboard counters snapshot served by the upstream
// service.
type Stats struct {
	TotalSystems   int `json:"totalSystems"`
	TotalParts     int `json:"totalParts"`
	TotalEmployees int `json:"totalEmployees"`
}
