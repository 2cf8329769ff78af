package client

const (
	// Chat endpoint (overridable through server.chat_path)
	defaultChatPath = "/api/chat"

	// Nominatim endpoints
	endpointSearch  = "/search"  // GET ?format=json&limit=1&q=
	endpointReverse = "/reverse" // GET ?format=json&lat=&lon=

	contentTypeJSON = "application/json"
	acceptStream    = "text/event-stream"
)
