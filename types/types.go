package types

// FailureKind - classification tag for a failed preview item
type FailureKind string

const (
	FailTimeout    FailureKind = "TIMEOUT"
	FailNetwork    FailureKind = "NETWORK_ERROR"
	FailNotFound   FailureKind = "404"
	FailForbidden  FailureKind = "403"
	FailServer     FailureKind = "500"
	FailUnknown    FailureKind = "UNKNOWN"
	FailProcessing FailureKind = "PROCESSING_FAILED"
)

// Reason returns the human-readable explanation carried in the
// description field of a failed record.
func (k FailureKind) Reason() string {
	switch k {
	case FailTimeout:
		return "Request timeout"
	case FailNetwork:
		return "Network error"
	case FailNotFound:
		return "Page not found"
	case FailForbidden:
		return "Access forbidden"
	case FailServer:
		return "Server error"
	case FailProcessing:
		return "An unexpected error occurred"
	default:
		return "Unable to fetch"
	}
}

// MetadataRecord - The structured preview result for one URL.
// Exactly one record is produced per submitted URL, success or not.
type MetadataRecord struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
	SiteName    string  `json:"siteName"`
	Favicon     *string `json:"favicon"`
	Type        string  `json:"type"`
	Success     bool    `json:"success"`
	Error       *string `json:"error,omitempty"`
}

// BatchRequest - Request body for the preview endpoint
type BatchRequest struct {
	Urls       []string `json:"urls"`
	Batch      bool     `json:"batch,omitempty"`
	BatchIndex int      `json:"batchIndex,omitempty"`
}

// Summary - Aggregate counts over a whole-batch result set
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	WithImages int `json:"withImages"`
}

// BatchResponse - Whole-batch response: one record per URL plus counts
type BatchResponse struct {
	Results []MetadataRecord `json:"results"`
	Summary Summary          `json:"summary"`
}

// PageResponse - Paged-mode response for one fixed-size slice of a batch
type PageResponse struct {
	Results        []MetadataRecord `json:"results"`
	BatchIndex     int              `json:"batchIndex"`
	IsComplete     bool             `json:"isComplete"`
	TotalProcessed int              `json:"totalProcessed"`
	TotalUrls      int              `json:"totalUrls"`
}
