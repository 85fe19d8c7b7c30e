package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// MCP error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type MCPRequest struct {
	ID     string         `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

type MCPResponse struct {
	ID     string    `json:"id"`
	Result any       `json:"result,omitempty"`
	Error  *MCPError `json:"error,omitempty"`
}

type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	var req MCPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusOK, mcpError(req.ID, codeParseError, "Parse error"))
		return
	}

	var resp MCPResponse
	switch req.Method {
	case "tools/call":
		resp = s.handleToolCall(r, req)
	case "tools/list":
		resp = MCPResponse{ID: req.ID, Result: map[string]any{"tools": availableTools()}}
	default:
		resp = mcpError(req.ID, codeMethodNotFound, "Method not found")
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

func (s *Server) handleToolCall(r *http.Request, req MCPRequest) MCPResponse {
	toolName, ok := req.Params["name"].(string)
	if !ok {
		return mcpError(req.ID, codeInvalidParams, "Invalid tool name")
	}
	arguments, _ := req.Params["arguments"].(map[string]any)

	switch toolName {
	case "ask_question":
		question, _ := arguments["question"].(string)
		if len([]rune(strings.TrimSpace(question))) < 3 {
			return mcpError(req.ID, codeInvalidParams, "question must be at least 3 characters")
		}
		return MCPResponse{ID: req.ID, Result: s.deps.Workflow.Run(r.Context(), question)}
	case "rebuild_index":
		stats, err := s.deps.Indexer.BuildIndex(r.Context())
		if err != nil {
			s.logger.Error("rebuild_index tool failed", zap.Error(err))
			return mcpError(req.ID, codeInternalError, "Failed to rebuild index: "+err.Error())
		}
		return MCPResponse{ID: req.ID, Result: stats}
	default:
		return mcpError(req.ID, codeMethodNotFound, "Tool not found")
	}
}

func (s *Server) handleToolsList(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{"tools": availableTools()})
}

func availableTools() []Tool {
	return []Tool{
		{
			Name:        "ask_question",
			Description: "Answer an aerospace engineering question from the indexed documents",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{
						"type":        "string",
						"description": "Question text (at least 3 characters)",
					},
				},
				"required": []string{"question"},
			},
		},
		{
			Name:        "rebuild_index",
			Description: "Rebuild the vector index from the documents directory",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

func mcpError(id string, code int, message string) MCPResponse {
	return MCPResponse{ID: id, Error: &MCPError{Code: code, Message: message}}
}
