package models

// DatabaseHealth describes the store as seen by the health probe.
type DatabaseHealth struct {
	Name        string   `json:"name"`
	State       string   `json:"state"`
	Collections []string `json:"collections"`
}
