package app

// ListResult is returned by EntityAccess.List. Items holds a slice of the
// entity's summaries.
type ListResult struct {
	Items    any `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
	Pages    int `json:"pages"`
}

// HealthResult is returned by Health.
type HealthResult struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	AuditDropped  uint64 `json:"audit_dropped"`
	AuditFailures uint64 `json:"audit_failures"`
}
