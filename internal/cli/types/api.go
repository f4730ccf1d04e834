package types

import "time"

// APIResponse is the JSON envelope of non-streaming endpoints
type APIResponse[T any] struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ListData is the payload of list endpoints
type ListData[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
}

// Thread is a stored conversation
type Thread struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ThreadMessage is one recorded message of a thread
type ThreadMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Images    []string  `json:"images,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateThreadRequest is the body of thread creation
type CreateThreadRequest struct {
	Title string `json:"title,omitempty"`
}

// UploadResult is returned by the upload endpoint
type UploadResult struct {
	Type   string `json:"type"` // excel, image, unknown
	URL    string `json:"url"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
}

// Attachment turns an upload into a chat attachment. Unknown files are sent
// as file attachments.
func (u UploadResult) Attachment(name string) Attachment {
	if u.Type == "image" {
		return ImageAttachment(name, u.URL)
	}
	return FileAttachment(name, u.URL)
}

// HealthStatus is the body of the health endpoint
type HealthStatus struct {
	Status string `json:"status"`
}
