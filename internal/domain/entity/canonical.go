package entity

import "strings"

// CanonicalMessage is the agent-ready form of one chat turn.
type CanonicalMessage struct {
	Role  string
	Parts []ContentPart
}

// Text joins the text parts with single spaces.
func (m CanonicalMessage) Text() string {
	var texts []string
	for _, p := range m.Parts {
		if t, ok := p.(TextPart); ok {
			texts = append(texts, t.Text)
		}
	}
	return strings.Join(texts, " ")
}

// ContentPart is the closed set of canonical parts: TextPart,
// InlineImagePart and RemoteImagePart.
type ContentPart interface {
	contentPart()
}

// TextPart plain text
type TextPart struct {
	Text string
}

// InlineImagePart an image embedded as base64 data
type InlineImagePart struct {
	Data     string
	MimeType string
}

// DataURI renders the image as a data: URI.
func (p InlineImagePart) DataURI() string {
	return "data:" + p.MimeType + ";base64," + p.Data
}

// RemoteImagePart a publicly reachable image URL, passed through unfetched
type RemoteImagePart struct {
	URL string
}

func (TextPart) contentPart()        {}
func (InlineImagePart) contentPart() {}
func (RemoteImagePart) contentPart() {}
