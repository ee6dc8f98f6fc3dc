package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SurajRakshe/Expense-Tracker/internal/domain"
	"github.com/SurajRakshe/Expense-Tracker/internal/repository"
	"github.com/SurajRakshe/Expense-Tracker/internal/service/auth"
	"github.com/SurajRakshe/Expense-Tracker/internal/service/category"
	"github.com/SurajRakshe/Expense-Tracker/internal/service/transaction"
)

const (
	healthCheckTimeout = 2 * time.Second
	dateLayout         = "2006-01-02"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux            *http.ServeMux
	logger         *slog.Logger
	auth           auth.Service
	categories     category.Service
	transactions   transaction.Service
	allowedOrigins []string
	dbHealth       func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
}

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, authSvc auth.Service, categorySvc category.Service, txnSvc transaction.Service, allowedOrigins []string, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:            http.NewServeMux(),
		logger:         logger,
		auth:           authSvc,
		categories:     categorySvc,
		transactions:   txnSvc,
		allowedOrigins: allowedOrigins,
		dbHealth:       dbHealth,
	}
	r.initMetrics()
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) register() {
	r.mux.HandleFunc("/healthz", r.public("/healthz", r.handleHealthz))
	r.mux.HandleFunc("/metrics", promhttp.Handler().ServeHTTP)
	r.mux.HandleFunc("/api/auth/login", r.public("/api/auth/login", r.handleLogin))
	r.mux.HandleFunc("/api/auth/register", r.public("/api/auth/register", r.handleRegister))
	r.mux.HandleFunc("/api/users/register", r.public("/api/users/register", r.handleUserRegister))
	r.mux.HandleFunc("/api/categories", r.protected("/api/categories", r.handleCategories))
	r.mux.HandleFunc("/api/categories/", r.protected("/api/categories/{id}", r.handleCategoryByID))
	r.mux.HandleFunc("/api/transactions", r.protected("/api/transactions", r.handleTransactions))
	r.mux.HandleFunc("/api/transactions/", r.protected("/api/transactions/{id}", r.handleTransactionByID))
}

// public routes still pass through authenticate so an identity is available
// when a token is presented; they just never require one.
func (r *Router) public(route string, next http.HandlerFunc) http.HandlerFunc {
	return r.withCORS(r.authenticate(r.audit(route, next)))
}

func (r *Router) protected(route string, next http.HandlerFunc) http.HandlerFunc {
	return r.withCORS(r.authenticate(r.audit(route, r.requireAuth(next))))
}

// ---- auth endpoints ----

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	signed, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		r.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": signed})
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	if _, err := r.registerUser(w, req); err != nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
}

func (r *Router) handleUserRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	user, err := r.registerUser(w, req)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, marshalUser(user))
}

// registerUser decodes a registration payload and creates the account,
// writing the error response itself on failure.
func (r *Router) registerUser(w http.ResponseWriter, req *http.Request) (*domain.User, error) {
	var payload struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, err
	}
	user, err := r.auth.Register(req.Context(), payload.Email, payload.Username, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			writeError(w, http.StatusConflict, "Email already registered")
		case errors.Is(err, auth.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "email and password are required")
		default:
			r.logger.Error("registration failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return nil, err
	}
	return user, nil
}

// ---- category endpoints ----

func (r *Router) handleCategories(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		categories, err := r.categories.List(req.Context())
		if err != nil {
			r.logger.Error("list categories failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		payload := make([]map[string]any, 0, len(categories))
		for _, c := range categories {
			payload = append(payload, marshalCategory(c))
		}
		writeJSON(w, http.StatusOK, payload)
	case http.MethodPost:
		var payload struct {
			Name string `json:"name"`
			Type string `json:"type"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created, err := r.categories.Create(req.Context(), payload.Name, payload.Type)
		if err != nil {
			switch {
			case errors.Is(err, category.ErrNameRequired), errors.Is(err, category.ErrInvalidType):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, category.ErrNameTaken):
				writeError(w, http.StatusConflict, "Category already exists")
			default:
				r.logger.Error("create category failed", "error", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}
		writeJSON(w, http.StatusOK, marshalCategory(*created))
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleCategoryByID(w http.ResponseWriter, req *http.Request) {
	id := strings.Trim(strings.TrimPrefix(req.URL.Path, "/api/categories/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if req.Method != http.MethodDelete {
		r.methodNotAllowed(w)
		return
	}
	if err := r.categories.Delete(req.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		r.logger.Error("delete category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}

// ---- transaction endpoints ----

type transactionPayload struct {
	Title      string  `json:"title"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
	CategoryID string  `json:"categoryId"`
}

func (r *Router) handleTransactions(w http.ResponseWriter, req *http.Request) {
	ident, ok := identityFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	switch req.Method {
	case http.MethodGet:
		txns, err := r.transactions.ListByUser(req.Context(), ident.UserID)
		if err != nil {
			r.logger.Error("list transactions failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		payload := make([]map[string]any, 0, len(txns))
		for _, t := range txns {
			payload = append(payload, marshalTransaction(t))
		}
		writeJSON(w, http.StatusOK, payload)
	case http.MethodPost:
		in, ok := r.decodeTransaction(w, req)
		if !ok {
			return
		}
		created, err := r.transactions.Create(req.Context(), ident.UserID, in)
		if err != nil {
			r.writeTransactionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, marshalTransaction(*created))
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleTransactionByID(w http.ResponseWriter, req *http.Request) {
	ident, ok := identityFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	id := strings.Trim(strings.TrimPrefix(req.URL.Path, "/api/transactions/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch req.Method {
	case http.MethodGet:
		txn, err := r.transactions.Get(req.Context(), ident.UserID, id)
		if err != nil {
			r.writeTransactionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, marshalTransaction(*txn))
	case http.MethodPut:
		in, ok := r.decodeTransaction(w, req)
		if !ok {
			return
		}
		updated, err := r.transactions.Update(req.Context(), ident.UserID, id, in)
		if err != nil {
			r.writeTransactionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, marshalTransaction(*updated))
	case http.MethodDelete:
		if err := r.transactions.Delete(req.Context(), ident.UserID, id); err != nil {
			r.writeTransactionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) decodeTransaction(w http.ResponseWriter, req *http.Request) (transaction.Input, bool) {
	var payload transactionPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return transaction.Input{}, false
	}
	in := transaction.Input{
		Title:      payload.Title,
		Amount:     payload.Amount,
		CategoryID: payload.CategoryID,
	}
	if payload.Date != "" {
		date, err := time.Parse(dateLayout, payload.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return transaction.Input{}, false
		}
		in.Date = date
	}
	return in, true
}

func (r *Router) writeTransactionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transaction.ErrNotFound):
		writeError(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, transaction.ErrTitleRequired), errors.Is(err, transaction.ErrCategoryNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		r.logger.Error("transaction operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ---- health ----

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{"status": "down", "error": err.Error()}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// ---- marshalling ----

func marshalUser(u *domain.User) map[string]any {
	return map[string]any{
		"id":       u.ID,
		"email":    u.Email,
		"username": u.Username,
	}
}

func marshalCategory(c domain.Category) map[string]any {
	return map[string]any{
		"id":   c.ID,
		"name": c.Name,
		"type": c.Type,
	}
}

func marshalTransaction(t domain.Transaction) map[string]any {
	return map[string]any{
		"id":         t.ID,
		"title":      t.Title,
		"amount":     t.Amount,
		"date":       t.Date.Format(dateLayout),
		"categoryId": t.CategoryID,
	}
}

// ---- audit ----

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// audit logs one structured line per request and feeds the prometheus
// counters. It runs inside authenticate so the actor is already resolved.
func (r *Router) audit(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		r.recordRequest(req.Method, route, status, duration)

		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if ident, ok := identityFromContext(req.Context()); ok {
			actor = "user"
			fields = append(fields, "user_id", ident.UserID)
		}
		fields = append(fields, "actor", actor)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
