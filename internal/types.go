package internal

// Sentinel values distinguishing "legitimately absent" from an error.
const (
	NoSize  = "No Size"
	NoBrand = "No Brand"
)

type CanonicalProduct struct {
	Barcode        string  `json:"barcode"`
	Description    string  `json:"description"`
	Brand          string  `json:"brand"`
	Size           string  `json:"size"`
	ImageURL       *string `json:"image_url"`
	EstimatedPrice float64 `json:"estimated_price"`
}

type FilterStats struct {
	LinesRead int64
	LinesKept int64
	BytesRead int64
	Malformed int64
}

type CleanStats struct {
	RowsRead  int64
	Kept      int64
	Rejected  int64
	Malformed int64
}

type TokenRecord struct {
	TokenHash    string
	Plan         string
	DurationDays int
	Status       string
	ActivatedAt  *string
	ExpiresAt    *string
}
