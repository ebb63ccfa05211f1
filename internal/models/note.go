// Package models defines the domain types for notesd.
package models

// Note is a named unit of plain-text content backed by one file.
type Note struct {
	Name string `json:"name"`
	Text string `json:"text"`
}
