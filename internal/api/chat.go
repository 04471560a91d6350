package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/agent"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/logging"
)

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type chatResponse struct {
	Reply     string                 `json:"reply"`
	Actions   []string               `json:"actions"`
	ToolCalls []agent.ToolCallRecord `json:"tool_calls"`
	Error     string                 `json:"error,omitempty"`
}

// handleChat runs one conversational turn. The whole turn is bounded by
// the configured deadline; on timeout the engine's fallback path still
// produces a reply, so this endpoint never surfaces a raw error for a
// well-formed request.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.Message = strings.TrimSpace(req.Message)
	if req.UserID == "" || req.Message == "" {
		Error(w, http.StatusBadRequest, "user_id and message are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Server.TurnTimeoutDuration())
	defer cancel()

	rlog := logging.WithRequestID(logging.CategoryAPI, chiMiddleware.GetReqID(r.Context()))
	rlog.Info("Chat turn: user=%s len=%d", req.UserID, len(req.Message))
	result := h.engine.HandleTurn(ctx, req.UserID, req.Message)
	if result.Err != nil {
		rlog.Warn("Chat turn degraded: user=%s err=%v", req.UserID, result.Err)
	}

	resp := chatResponse{
		Reply:     result.Reply,
		Actions:   result.Actions,
		ToolCalls: result.ToolCalls,
	}
	if resp.Actions == nil {
		resp.Actions = []string{}
	}
	if resp.ToolCalls == nil {
		resp.ToolCalls = []agent.ToolCallRecord{}
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}
	JSON(w, http.StatusOK, resp)
}
