package entity

// Upload kinds reported back to the UI.
const (
	UploadExcel   = "excel"
	UploadImage   = "image"
	UploadUnknown = "unknown"
)

// UploadResult describes a stored upload.
type UploadResult struct {
	Type string
	URL  string
	// Width and Height are set for images only.
	Width  int
	Height int
}
