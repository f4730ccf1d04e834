package client

const (
	endpointHealth = "/health"
	endpointUpload = "/upload"

	// Chat endpoints
	endpointChat = "/api/chat" // SSE

	// Thread endpoints
	endpointThreads        = "/api/threads"
	endpointThreadByID     = "/api/threads/%s"
	endpointThreadMessages = "/api/threads/%s/messages"
)
