package dto

import "github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"

// UploadResponse is the body returned by POST /upload.
type UploadResponse struct {
	Type   string `json:"type"` // excel, image, unknown
	URL    string `json:"url"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
}

// ToUploadResponse converts entity.UploadResult. Dimensions are reported for
// images only, even when they could not be decoded.
func ToUploadResponse(r *entity.UploadResult) UploadResponse {
	resp := UploadResponse{Type: r.Type, URL: r.URL}
	if r.Type == entity.UploadImage {
		w, h := r.Width, r.Height
		resp.Width, resp.Height = &w, &h
	}
	return resp
}
