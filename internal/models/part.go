package models

type PartStatus string

const (
	PartStatusActive   PartStatus = "Active"
	PartStatusUnusable PartStatus = "Unusable"
)

// SpecEntry is one key/value line of a part's spec sheet. Both sides
// are non-empty whenever the entry is present.
type SpecEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Part struct {
	ID             string      `json:"_id"`
	PartType       string      `json:"partType"`
	Brand          string      `json:"brand"`
	Model          string      `json:"model"`
	SerialNumber   string      `json:"serialNumber"`
	Barcode        string      `json:"barcode"`
	Status         PartStatus  `json:"status"`
	UnusableReason string      `json:"unusableReason,omitempty"`
	Specs          []SpecEntry `json:"specs,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	BarcodeImage   string      `json:"barcodeImage,omitempty"`
	AssignedSystem string      `json:"assignedSystem,omitempty"`
}

// Free reports whether the part is attached to no system.
func (p Part) Free() bool {
	return p.AssignedSystem == ""
}
