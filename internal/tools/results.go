package tools

// Structured result shapes returned to the MCP client. Status is always set;
// the other fields depend on it.

type GetDocsResult struct {
	Status  string `json:"status"` // "found" | "not_found"
	Content string `json:"content,omitempty"`
}

type CacheDocsResult struct {
	Status  string `json:"status"` // "success" | "error"
	Message string `json:"message,omitempty"`
}

type ListDocsResult struct {
	Status    string   `json:"status"` // "success"
	Count     int      `json:"count"`
	Libraries []string `json:"libraries"`
}
