package dto

import "time"

type Format string

const (
	FormatCSV  Format = "csv"
	FormatText Format = "txt"
)

type ReportRequest struct {
	OrganizationID string
	Format         Format
	CategoryID     string
	From           time.Time
	To             time.Time
}

// Document is a rendered report ready to be served as an attachment.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}
