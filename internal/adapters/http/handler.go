package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/partsdesk/internal/app/conversation"
	"github.com/PabloGalante/partsdesk/internal/domain"
	"github.com/PabloGalante/partsdesk/internal/observability"
)

const maxBodyBytes = 64 << 10

type Server struct {
	svc     *conversation.Service
	catalog domain.Catalog
}

// NewServer returns the API handler with its middleware applied.
func NewServer(svc *conversation.Service, catalog domain.Catalog) http.Handler {
	s := &Server{svc: svc, catalog: catalog}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// POST /chat and its /api alias
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/api/chat", s.handleChat)

	// GET /parts/{partNumber}
	mux.HandleFunc("/parts/", s.handlePart)

	// GET /search?q=
	mux.HandleFunc("/search", s.handleSearch)

	// GET /conversations/{id}
	mux.HandleFunc("/conversations/", s.handleConversation)

	return chainMiddlewares(mux, withRecover, withLogging, withRequestID, withCORS)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatRequest struct {
	Message        *string `json:"message"`
	ConversationID *string `json:"conversationId"`
}

type chatResponse struct {
	Text           string                    `json:"text"`
	ProductCards   []domain.ProductReference `json:"productCards,omitempty"`
	ConversationID string                    `json:"conversationId"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors,omitempty"`
}

type partResponse struct {
	PartNumber    string   `json:"partNumber"`
	Name          string   `json:"name"`
	Price         string   `json:"price"`
	ImageURL      string   `json:"imageUrl"`
	BuyLink       string   `json:"buyLink,omitempty"`
	Category      string   `json:"category"`
	Brand         string   `json:"brand,omitempty"`
	Description   string   `json:"description,omitempty"`
	InStock       bool     `json:"inStock"`
	Compatibility []string `json:"compatibility"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []partResponse `json:"results"`
}

type turnResponse struct {
	ID           string                    `json:"id"`
	Role         string                    `json:"role"`
	Text         string                    `json:"text"`
	ProductCards []domain.ProductReference `json:"productCards,omitempty"`
	CreatedAt    time.Time                 `json:"createdAt"`
}

type conversationResponse struct {
	ConversationID string         `json:"conversationId"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Messages       []turnResponse `json:"messages"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		badRequest(w, fieldError{Field: "body", Message: "Body must be a JSON object"})
		return
	}
	if errs := validateChat(req); len(errs) > 0 {
		badRequest(w, errs...)
		return
	}

	out, err := s.svc.ProcessMessage(r.Context(), conversation.ProcessMessageInput{
		ConversationID: domain.ConversationID(*req.ConversationID),
		Message:        *req.Message,
	})
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("chat failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal server error processing chat message"})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Text:           out.Text,
		ProductCards:   out.ProductCards,
		ConversationID: string(out.ConversationID),
	})
}

func validateChat(req chatRequest) []fieldError {
	var errs []fieldError
	switch {
	case req.Message == nil:
		errs = append(errs, fieldError{Field: "message", Message: "Required"})
	case strings.TrimSpace(*req.Message) == "":
		errs = append(errs, fieldError{Field: "message", Message: "Message cannot be empty"})
	}
	switch {
	case req.ConversationID == nil:
		errs = append(errs, fieldError{Field: "conversationId", Message: "Required"})
	case strings.TrimSpace(*req.ConversationID) == "":
		errs = append(errs, fieldError{Field: "conversationId", Message: "Conversation id cannot be empty"})
	}
	return errs
}

// /parts/{partNumber}
func (s *Server) handlePart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	pn := strings.TrimPrefix(r.URL.Path, "/parts/")
	if pn == "" || strings.Contains(pn, "/") {
		notFound(w, "Part not found")
		return
	}

	part, err := s.catalog.GetPartData(r.Context(), pn)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if part == nil {
		notFound(w, "Part not found")
		return
	}
	writeJSON(w, http.StatusOK, toPartResponse(part))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		badRequest(w, fieldError{Field: "q", Message: "Required"})
		return
	}

	parts, err := s.catalog.SearchParts(r.Context(), q)
	if err != nil {
		internalError(w, r, err)
		return
	}
	resp := searchResponse{Query: q, Results: make([]partResponse, 0, len(parts))}
	for _, p := range parts {
		resp.Results = append(resp.Results, toPartResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// /conversations/{id}
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/conversations/")
	if id == "" || strings.Contains(id, "/") {
		notFound(w, "Conversation not found")
		return
	}

	conv, turns, err := s.svc.GetTimeline(r.Context(), domain.ConversationID(id), 0)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "Conversation not found")
			return
		}
		internalError(w, r, err)
		return
	}

	resp := conversationResponse{
		ConversationID: string(conv.ID),
		CreatedAt:      conv.CreatedAt,
		UpdatedAt:      conv.UpdatedAt,
		Messages:       make([]turnResponse, 0, len(turns)),
	}
	for _, t := range turns {
		resp.Messages = append(resp.Messages, turnResponse{
			ID:           string(t.ID),
			Role:         string(t.Role),
			Text:         t.Text,
			ProductCards: t.ProductCards,
			CreatedAt:    t.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ─────────────────────────────────────────────
// Conversion helpers
// ─────────────────────────────────────────────

func toPartResponse(p *domain.Part) partResponse {
	compat := p.Compatibility
	if compat == nil {
		compat = []string{}
	}
	return partResponse{
		PartNumber:    p.PartNumber,
		Name:          p.Name,
		Price:         p.Price,
		ImageURL:      p.ImageURL,
		BuyLink:       p.BuyLink,
		Category:      string(p.Category),
		Brand:         p.Brand,
		Description:   p.Description,
		InStock:       p.InStock,
		Compatibility: compat,
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, errs ...fieldError) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Message: "Invalid request format",
		Errors:  errs,
	})
}

func notFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, errorResponse{Message: msg})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "Method not allowed"})
}
