package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	v "github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/souqops/analytics-manager/internal/apperr"
	"github.com/souqops/analytics-manager/internal/dependency"
	"github.com/souqops/analytics-manager/internal/entity"
	"github.com/souqops/analytics-manager/internal/middleware"
	"github.com/souqops/analytics-manager/internal/ratelimit"
)

const companyHeader = "X-Company-ID"

// Server implements the public storefront tracking handlers. Writes here are
// best-effort: a store visit against an unknown company is logged and
// acknowledged rather than rejected, so tracking can never break a shop page.
// Product visits are the exception: a product id pointing outside the company
// is a caller bug and fails hard.
type Server struct {
	rep     dependency.Repository
	limiter *ratelimit.TrackingLimiter
}

// New creates a new server with tracking handlers.
func New(rep dependency.Repository, limiter *ratelimit.TrackingLimiter) *Server {
	return &Server{rep: rep, limiter: limiter}
}

// Routes mounts the tracking endpoints on r. ClientIdentifier middleware must
// run before them: session fallback and rate limiting key off its context.
func (s *Server) Routes(r chi.Router) {
	r.Post("/visit", s.trackVisit)
	r.Post("/product-visit", s.trackProductVisit)
	r.Post("/event", s.trackEvent)
}

type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Error   string `json:"error,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func companyID(r *http.Request) (int, error) {
	raw := r.Header.Get(companyHeader)
	if raw == "" {
		return 0, apperr.ErrTenantRequired
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperr.ErrTenantRequired
	}
	return id, nil
}

// sessionID prefers the storefront-provided id and falls back to the derived
// browser fingerprint.
func sessionID(r *http.Request, provided string) string {
	if provided != "" {
		return provided
	}
	return middleware.GetClientFingerprint(r.Context())
}

func clientIP(r *http.Request) string {
	ip := middleware.GetClientIP(r.Context())
	if !v.IsIP(ip) {
		return ""
	}
	return ip
}

type visitRequest struct {
	SessionID   string `json:"sessionId"`
	Referrer    string `json:"referrer"`
	LandingPage string `json:"landingPage"`
}

func (s *Server) trackVisit(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "can't resolve company", Error: err.Error()})
		return
	}
	if err := s.limiter.CheckVisit(middleware.GetClientIP(r.Context())); err != nil {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Message: "rate limited", Error: err.Error()})
		return
	}

	var req visitRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	exists, err := s.rep.Companies().CompanyExists(r.Context(), cid)
	if err == nil && !exists {
		slog.Default().WarnContext(r.Context(), "store visit for unknown company",
			slog.Int("companyId", cid),
		)
		writeJSON(w, http.StatusOK, response{Success: true, Data: nil})
		return
	}
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "can't verify company",
			slog.Int("companyId", cid),
			slog.String("err", err.Error()),
		)
		writeJSON(w, http.StatusOK, response{Success: true, Data: nil})
		return
	}

	id, err := s.rep.Visits().TrackStoreVisit(r.Context(), cid, entity.StoreVisitInsert{
		SessionID:   sessionID(r, req.SessionID),
		IPAddress:   clientIP(r),
		UserAgent:   r.UserAgent(),
		Referrer:    req.Referrer,
		LandingPage: req.LandingPage,
	})
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "can't track store visit",
			slog.Int("companyId", cid),
			slog.String("err", err.Error()),
		)
		writeJSON(w, http.StatusOK, response{Success: true, Data: nil})
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: map[string]int{"id": id}})
}

type productVisitRequest struct {
	ProductID int    `json:"productId"`
	SessionID string `json:"sessionId"`
	Source    string `json:"source"`
}

func (s *Server) trackProductVisit(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "can't resolve company", Error: err.Error()})
		return
	}
	if err := s.limiter.CheckVisit(middleware.GetClientIP(r.Context())); err != nil {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Message: "rate limited", Error: err.Error()})
		return
	}

	var req productVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: apperr.ErrMissingField.Error(), Error: "productId is required"})
		return
	}

	// The ownership check and the insert must see the same product row, so
	// both run in one transaction. A mistargeted product view is a caller
	// bug worth surfacing.
	var id int
	err = s.rep.Tx(r.Context(), func(ctx context.Context, store dependency.Repository) error {
		if _, err := store.Products().ProductByID(ctx, cid, req.ProductID); err != nil {
			return err
		}
		var txErr error
		id, txErr = store.Visits().TrackProductVisit(ctx, cid, entity.ProductVisitInsert{
			ProductID: req.ProductID,
			SessionID: sessionID(r, req.SessionID),
			Source:    req.Source,
		})
		return txErr
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Message: "product not found", Error: err.Error()})
			return
		}
		slog.Default().ErrorContext(r.Context(), "can't track product visit",
			slog.Int("companyId", cid),
			slog.Int("productId", req.ProductID),
			slog.String("err", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "can't track product visit", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: map[string]int{"id": id}})
}

type eventRequest struct {
	SessionID string   `json:"sessionId"`
	EventType string   `json:"eventType"`
	ProductID *int     `json:"productId"`
	OrderID   *int     `json:"orderId"`
	Value     *float64 `json:"value"`
	Metadata  string   `json:"metadata"`
}

func (s *Server) trackEvent(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "can't resolve company", Error: err.Error()})
		return
	}
	if err := s.limiter.CheckEvent(middleware.GetClientIP(r.Context())); err != nil {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Message: "rate limited", Error: err.Error()})
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventType == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: apperr.ErrMissingField.Error(), Error: "eventType is required"})
		return
	}

	exists, err := s.rep.Companies().CompanyExists(r.Context(), cid)
	if err != nil || !exists {
		if err != nil {
			slog.Default().ErrorContext(r.Context(), "can't verify company",
				slog.Int("companyId", cid),
				slog.String("err", err.Error()),
			)
		} else {
			slog.Default().WarnContext(r.Context(), "conversion event for unknown company",
				slog.Int("companyId", cid),
			)
		}
		writeJSON(w, http.StatusOK, response{Success: true, Data: nil})
		return
	}

	// Cart adds against a foreign product are recorded anyway; the mismatch
	// is only worth a warning.
	if req.EventType == string(entity.EventAddToCart) && req.ProductID != nil {
		if _, err := s.rep.Products().ProductByID(r.Context(), cid, *req.ProductID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				slog.Default().WarnContext(r.Context(), "add_to_cart references foreign product",
					slog.Int("companyId", cid),
					slog.Int("productId", *req.ProductID),
				)
			}
		}
	}

	var value *decimal.Decimal
	if req.Value != nil {
		d := decimal.NewFromFloat(*req.Value)
		value = &d
	}

	// Order references are soft: an id that does not resolve within the
	// company degrades to null instead of rejecting the event. The lookup
	// and the insert share one transaction so the stored reference matches
	// what the check saw.
	var id int
	err = s.rep.Tx(r.Context(), func(ctx context.Context, store dependency.Repository) error {
		orderID := req.OrderID
		if orderID != nil {
			ok, err := store.Orders().OrderExists(ctx, cid, *orderID)
			if err != nil || !ok {
				orderID = nil
			}
		}
		var txErr error
		id, txErr = store.Events().TrackConversionEvent(ctx, cid, entity.ConversionEventInsert{
			SessionID: sessionID(r, req.SessionID),
			EventType: entity.ConversionEventType(req.EventType),
			ProductID: req.ProductID,
			OrderID:   orderID,
			Value:     value,
			Metadata:  req.Metadata,
		})
		return txErr
	})
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "can't track conversion event",
			slog.Int("companyId", cid),
			slog.String("eventType", req.EventType),
			slog.String("err", err.Error()),
		)
		writeJSON(w, http.StatusOK, response{Success: true, Data: nil})
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: map[string]int{"id": id}})
}
