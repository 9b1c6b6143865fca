// internal/server/handlers.go
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagehound/api/schemas"
	"github.com/xkilldash9x/pagehound/internal/browser"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, schemas.HealthResponse{
		Status:         "ok",
		ActiveSessions: s.registry.Count(),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.registry.Create(r.Context())
	if err != nil {
		s.writeError(w, browserError("Failed to create browser session: %v", err))
		return
	}

	createdAt := session.CreatedAt().Format(time.RFC3339)
	s.logger.Info("Created new browser session", zap.String("session_id", session.ID()))
	s.writeJSON(w, http.StatusOK, schemas.SessionResponse{
		SessionID: session.ID(),
		Active:    true,
		CreatedAt: &createdAt,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	session, ok := s.registry.Get(id)
	if !ok {
		s.writeError(w, sessionNotFound(id))
		return
	}

	resp := schemas.SessionResponse{
		SessionID: id,
		Active:    true,
	}
	createdAt := session.CreatedAt().Format(time.RFC3339)
	resp.CreatedAt = &createdAt
	if url, err := session.CurrentURL(r.Context()); err == nil {
		resp.CurrentURL = &url
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !s.registry.Remove(id) {
		s.writeError(w, sessionNotFound(id))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"session_id": id,
	})
}

func (s *Server) handleCleanupSessions(w http.ResponseWriter, r *http.Request) {
	cleared, err := s.registry.Clear(r.Context())
	if err != nil {
		s.writeError(w, internalError("Session cleanup failed: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, schemas.CleanupResponse{
		Success:      true,
		ClearedCount: cleared,
	})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req schemas.NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, serializationError(err))
		return
	}

	session, ok := s.registry.Get(req.SessionID)
	if !ok {
		s.writeError(w, sessionNotFound(req.SessionID))
		return
	}

	if err := session.Navigate(r.Context(), req.URL); err != nil {
		s.writeError(w, browserError("Navigation failed: %v", err))
		return
	}

	s.logger.Info("Navigated", zap.String("session_id", req.SessionID), zap.String("url", req.URL))
	s.writeJSON(w, http.StatusOK, schemas.NavigateResponse{
		Success:    true,
		CurrentURL: req.URL,
	})
}

func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	var req schemas.InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, serializationError(err))
		return
	}

	session, ok := s.registry.Get(req.SessionID)
	if !ok {
		s.writeError(w, sessionNotFound(req.SessionID))
		return
	}

	result, err := session.Interact(r.Context(), req.Action)
	if err != nil {
		s.metrics.IncAction(string(req.Action.Type), false)
		s.writeError(w, browserError("%v", err))
		return
	}

	s.metrics.IncAction(string(req.Action.Type), true)
	s.writeJSON(w, http.StatusOK, schemas.InteractionResponse{
		Success: true,
		Result:  &result,
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req schemas.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, serializationError(err))
		return
	}

	session, ok := s.registry.Get(req.SessionID)
	if !ok {
		s.writeError(w, sessionNotFound(req.SessionID))
		return
	}

	data, err := session.ExtractData(r.Context(), req.Selector)
	if err != nil {
		s.writeError(w, browserError("%v", err))
		return
	}

	s.writeJSON(w, http.StatusOK, schemas.ExtractResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) handleAutomationTask(w http.ResponseWriter, r *http.Request) {
	var req schemas.AutomationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, serializationError(err))
		return
	}

	session, ok := s.registry.Get(req.SessionID)
	if !ok {
		s.writeError(w, sessionNotFound(req.SessionID))
		return
	}

	s.logger.Info("Processing automation task",
		zap.String("session_id", req.SessionID),
		zap.String("task", req.TaskDescription),
	)

	plan := s.planner.CreateTaskPlan(r.Context(), req)
	results := s.engine.ExecutePlan(r.Context(), session, plan)

	success := true
	for _, result := range results {
		if !result.Success {
			success = false
			break
		}
	}

	s.writeJSON(w, http.StatusOK, schemas.AutomationResponse{
		Success: success,
		TaskID:  uuid.New().String(),
		Results: results,
	})
}

func (s *Server) handleProductInformation(w http.ResponseWriter, r *http.Request) {
	var req schemas.ProductExtractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, serializationError(err))
		return
	}

	s.logger.Info("Getting product information", zap.String("url", req.URL))
	start := time.Now()

	var session *browser.Session
	if req.SessionID != nil {
		registered, ok := s.registry.Get(*req.SessionID)
		if !ok {
			s.writeError(w, sessionNotFound(*req.SessionID))
			return
		}
		session = registered
	} else {
		temporary, err := s.driver.NewSession(r.Context())
		if err != nil {
			s.writeError(w, browserError("Failed to create browser session: %v", err))
			return
		}
		defer func() { _ = temporary.Close() }()
		session = temporary
	}

	if err := session.Navigate(r.Context(), req.URL); err != nil {
		s.writeError(w, browserError("Failed to navigate to %s: %v", req.URL, err))
		return
	}

	htmlContent, err := session.PageSource(r.Context())
	if err != nil {
		s.writeError(w, browserError("Failed to get page source: %v", err))
		return
	}

	product := s.extractor.ExtractProductInfo(r.Context(), req.URL, htmlContent)
	elapsed := time.Since(start)
	s.metrics.ObserveExtraction(elapsed)

	s.logger.Info("Product extraction complete",
		zap.String("url", req.URL),
		zap.Duration("elapsed", elapsed),
	)
	s.writeJSON(w, http.StatusOK, schemas.ProductExtractionResponse{
		Success:          true,
		Product:          &product,
		ExtractionTimeMS: elapsed.Milliseconds(),
	})
}
