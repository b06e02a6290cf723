package kms

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"agentdesk/internal/chat"
	"agentdesk/internal/intent"
	"agentdesk/internal/search"
)

// App is one embedded line-of-business application the console can
// host. App search matches on name and description.
type App struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// SampleApps is the demo embedded-app registry.
var SampleApps = []App{
	{ID: "disputes", Name: "Card Disputes", URL: "/apps/disputes", Description: "Raise and track card transaction disputes", Category: "cards"},
	{ID: "kyc", Name: "KYC Review", URL: "/apps/kyc", Description: "Customer identity verification and document review", Category: "compliance"},
	{ID: "payments", Name: "Payment Tracer", URL: "/apps/payments", Description: "Trace domestic and international payments", Category: "payments"},
	{ID: "offers", Name: "Customer Offers", URL: "/apps/offers", Description: "Eligible product offers for the current customer", Category: "sales"},
	{ID: "statements", Name: "Statement Browser", URL: "/apps/statements", Description: "Browse and resend account statements", Category: "accounts"},
}

// SampleIntents is the demo intent-config document.
var SampleIntents = intent.Config{Intents: []intent.Intent{
	{Key: "dispute_charge", Title: "Dispute a charge", Keywords: []string{"dispute", "chargeback", "unauthorized"}, AppID: "disputes"},
	{Key: "reset_pin", Title: "Reset card PIN", Keywords: []string{"pin", "forgot"}},
	{Key: "lost_card", Title: "Lost or stolen card", Keywords: []string{"lost", "stolen", "freeze"}, AppID: "disputes"},
	{Key: "trace_payment", Title: "Trace a payment", Keywords: []string{"transfer", "missing", "payment"}, AppID: "payments"},
}}

// Server exposes the console's upstream HTTP contracts backed by the
// local article store and the embedded demo documents.
type Server struct {
	store  *Store
	apps   []App
	logger *zap.Logger
}

// NewServer wires the demo backend.
func NewServer(store *Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: store, apps: SampleApps, logger: logger}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/kms/search", s.handleSearch)
	mux.HandleFunc("POST /api/apps/search", s.handleAppSearch)
	mux.HandleFunc("GET /api/config/templates", s.handleTemplates)
	mux.HandleFunc("GET /api/config/intents", s.handleIntents)
	return mux
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req search.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	start := time.Now()
	articles, total, err := s.store.Search(r.Context(), req.Query, req.TopK, req.Offset)
	if err != nil {
		s.logger.Error("article search failed", zap.String("q", req.Query), zap.Error(err))
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	results := make([]search.Result, 0, len(articles))
	for _, a := range articles {
		results = append(results, search.Result{
			ID:       a.ID,
			Title:    a.Title,
			URL:      a.URL,
			Snippet:  a.Snippet,
			Category: a.Category,
			Product:  a.Product,
		})
	}
	writeJSON(w, search.Response{
		Results: results,
		Total:   total,
		TookMs:  int(time.Since(start).Milliseconds()),
	})
}

func (s *Server) handleAppSearch(w http.ResponseWriter, r *http.Request) {
	var req search.AppRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	start := time.Now()
	q := strings.ToLower(req.Query)
	var results []search.Result
	total := 0
	for _, app := range s.apps {
		if q != "" &&
			!strings.Contains(strings.ToLower(app.Name), q) &&
			!strings.Contains(strings.ToLower(app.Description), q) {
			continue
		}
		if cat, ok := req.Filters["category"]; ok && cat != app.Category {
			continue
		}
		total++
		if len(results) < limit {
			results = append(results, search.Result{
				ID:       app.ID,
				Title:    app.Name,
				URL:      app.URL,
				Snippet:  app.Description,
				Category: app.Category,
			})
		}
	}
	writeJSON(w, search.Response{
		Results: results,
		Total:   total,
		TookMs:  int(time.Since(start).Milliseconds()),
	})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(chat.FallbackTemplatesJSON())
}

func (s *Server) handleIntents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, SampleIntents)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
