package models

import "time"

// Workbook processing states.
const (
	FileStatusUploaded = "uploaded"
	FileStatusMapped   = "mapped"
	FileStatusError    = "error"
)

// FileInfo represents metadata about an uploaded roster workbook.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Status     string    `json:"status"`
}
