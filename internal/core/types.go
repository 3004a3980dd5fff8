package core

import "time"

// ImportResult describes one completed import run.
type ImportResult struct {
	ImportID string        `json:"import_id"`
	Files    int           `json:"files"`
	Inserted int           `json:"inserted"`
	Duration time.Duration `json:"duration_ns"`
}

// Preview is the first line of a file shown next to its column numbers.
type Preview struct {
	Line   string `json:"line"`
	Marked string `json:"marked"`
}

// LibraryStatus summarizes the part library for the shells.
type LibraryStatus struct {
	Parts      int        `json:"parts"`
	Database   string     `json:"database"`
	Backup     string     `json:"backup"`
	HasBackup  bool       `json:"has_backup"`
	Operation  GateStatus `json:"operation"`
	Separator  string     `json:"separator"`
	MappingDoc string     `json:"mapping"`
}
