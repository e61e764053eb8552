package models

type Department string

const (
	DepartmentHR       Department = "HR"
	DepartmentManager  Department = "Manager"
	DepartmentEmployee Department = "Employee"
)

type Employee struct {
	ID              string     `json:"_id"`
	Name            string     `json:"name"`
	EmployeeID      string     `json:"employeeID"`
	Department      Department `json:"department"`
	Designation     string     `json:"designation"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	AllocatedSystem string     `json:"allocatedSystem,omitempty"`
}

// Unassigned reports whether the employee has no allocated system.
func (e Employee) Unassigned() bool {
	return e.AllocatedSystem == ""
}

// Fields returns the editable fields as a flat map, the shape the
// field-level diff for partial updates works on.
func (e Employee) Fields() map[string]string {
	return map[string]string{
		"name":        e.Name,
		"employeeID":  e.EmployeeID,
		"department":  string(e.Department),
		"designation": e.Designation,
		"email":       e.Email,
		"phone":       e.Phone,
	}
}
