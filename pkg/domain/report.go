package domain

// Report is the payload handed to the submit callback.
// The subcategory is deliberately not part of it; the backend contract only
// accepts the category and the notes.
type Report struct {
	ReportCategory string `json:"report_category"`
	Notes          string `json:"notes"`
}
