package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	engine "github.com/souqops/analytics-manager/internal/analytics"
	"github.com/souqops/analytics-manager/internal/apperr"
	"github.com/souqops/analytics-manager/internal/entity"
)

// Config is the configuration for the analytics endpoints.
type Config struct {
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	DefaultLimit int           `mapstructure:"default_limit"`
}

const (
	defaultQueryTimeout = 15 * time.Second
	defaultLimit        = 10
)

// Server implements handlers for the dashboard analytics requests. Most
// analyzers degrade: an internal failure is logged and answered with a
// zero-valued payload so one broken widget cannot blank the whole dashboard.
// The conversion-rate family propagates failures instead, since a silently
// zeroed conversion rate reads as a real (and alarming) business signal.
type Server struct {
	eng     *engine.Engine
	timeout time.Duration
	limit   int
}

// New creates a new server with analytics handlers.
func New(c *Config, eng *engine.Engine) *Server {
	s := &Server{
		eng:     eng,
		timeout: c.QueryTimeout,
		limit:   c.DefaultLimit,
	}
	if s.timeout <= 0 {
		s.timeout = defaultQueryTimeout
	}
	if s.limit <= 0 {
		s.limit = defaultLimit
	}
	return s
}

// Routes mounts every analytics endpoint on r. The caller is expected to have
// already applied token verification middleware.
func (s *Server) Routes(r chi.Router) {
	r.Get("/funnel", degrading(s, "store funnel", &entity.StoreFunnel{},
		func(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.StoreFunnel, error) {
			return s.eng.StoreFunnel(ctx, companyID, tr)
		}))
	r.Get("/funnel/product/{productId}", s.productFunnel)
	r.Get("/conversion", propagating(s, "conversion rate",
		func(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.ConversionReport, error) {
			return s.eng.ConversionRate(ctx, companyID, tr)
		}))
	r.Get("/top-products", s.topProducts)
	r.Get("/daily", propagating(s, "daily analytics",
		func(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.DailyPoint, error) {
			return s.eng.Daily(ctx, companyID, tr)
		}))
	r.Get("/customers/scores", s.customerScores)
	r.Get("/products/health", degrading(s, "product health", []entity.ProductHealth{},
		func(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.ProductHealth, error) {
			return s.eng.ProductHealthScores(ctx, companyID, tr)
		}))
	r.Get("/profit", degrading(s, "profit report", &entity.ProfitReport{},
		func(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.ProfitReport, error) {
			return s.eng.ProfitReport(ctx, companyID, tr)
		}))
	r.Get("/cod", degrading(s, "cod report", &entity.CODReport{},
		func(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.CODReport, error) {
			return s.eng.CODReport(ctx, companyID, tr)
		}))
	r.Get("/returns", degrading(s, "returns report", &entity.ReturnsReport{},
		func(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.ReturnsReport, error) {
			return s.eng.ReturnsReport(ctx, companyID, tr)
		}))
	r.Get("/delivery", degrading(s, "delivery report", &entity.DeliveryReport{},
		func(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.DeliveryReport, error) {
			return s.eng.DeliveryReport(ctx, companyID, tr)
		}))
	r.Get("/abandoned-carts", degrading(s, "abandoned carts", &entity.AbandonedCartReport{},
		func(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.AbandonedCartReport, error) {
			return s.eng.AbandonedCarts(ctx, companyID, tr)
		}))
	r.Get("/payment-methods", degrading(s, "payment methods", []entity.PaymentMethodStats{},
		func(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.PaymentMethodStats, error) {
			return s.eng.PaymentMethods(ctx, companyID, tr)
		}))
	r.Get("/regions", degrading(s, "regions", []entity.RegionStats{},
		func(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.RegionStats, error) {
			return s.eng.Regions(ctx, companyID, tr)
		}))
	r.Get("/team", degrading(s, "team", []entity.TeamMemberStats{},
		func(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.TeamMemberStats, error) {
			return s.eng.Team(ctx, companyID, tr)
		}))
	r.Get("/stock-forecast", degrading(s, "stock forecast", &entity.StockForecast{},
		func(ctx context.Context, companyID int, _ entity.TimeRange) (*entity.StockForecast, error) {
			return s.eng.StockForecast(ctx, companyID)
		}))
	r.Get("/coupons", degrading(s, "coupons", []entity.CouponStats{},
		func(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.CouponStats, error) {
			return s.eng.CouponPerformance(ctx, companyID, tr)
		}))
	r.Get("/dashboard", degrading(s, "dashboard summary", &entity.DashboardSummary{},
		func(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.DashboardSummary, error) {
			return s.eng.DashboardSummary(ctx, companyID, tr)
		}))
}

type period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type response struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Period  *period `json:"period,omitempty"`
	Error   string  `json:"error,omitempty"`
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

func windowPeriod(tr entity.TimeRange) *period {
	if tr.IsZero() {
		return nil
	}
	return &period{
		Start: tr.From.Format(time.RFC3339),
		End:   tr.To.Format(time.RFC3339),
	}
}

// CompanyID resolves the tenant from the verified token claims.
func CompanyID(ctx context.Context) (int, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return 0, apperr.ErrTenantRequired
	}
	switch v := claims["company_id"].(type) {
	case float64:
		if v > 0 {
			return int(v), nil
		}
	case json.Number:
		if id, err := v.Int64(); err == nil && id > 0 {
			return int(id), nil
		}
	case string:
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, apperr.ErrTenantRequired
}

func queryWindow(r *http.Request) engine.WindowQuery {
	q := r.URL.Query()
	return engine.WindowQuery{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Period:    q.Get("period"),
	}
}

// degrading wraps an analyzer whose failures must not break the dashboard:
// errors are logged and answered 200 with a zero-valued payload.
func degrading[T any](s *Server, name string, zero T, fn func(ctx context.Context, companyID int, tr entity.TimeRange) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := CompanyID(r.Context())
		if err != nil {
			writeJSON(w, http.StatusForbidden, errorResponse{Message: "can't resolve company", Error: err.Error()})
			return
		}
		tr := engine.ResolveWindow(queryWindow(r), time.Now())

		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()

		data, err := fn(ctx, companyID, tr)
		if err != nil {
			slog.Default().ErrorContext(r.Context(), "can't compute "+name,
				slog.Int("companyId", companyID),
				slog.String("err", err.Error()),
			)
			writeJSON(w, http.StatusOK, response{Success: true, Data: zero, Period: windowPeriod(tr), Error: "analytics temporarily unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, response{Success: true, Data: data, Period: windowPeriod(tr)})
	}
}

// propagating wraps an analyzer whose failures must surface as 500s.
func propagating[T any](s *Server, name string, fn func(ctx context.Context, companyID int, tr entity.TimeRange) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := CompanyID(r.Context())
		if err != nil {
			writeJSON(w, http.StatusForbidden, errorResponse{Message: "can't resolve company", Error: err.Error()})
			return
		}
		tr := engine.ResolveWindow(queryWindow(r), time.Now())

		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()

		data, err := fn(ctx, companyID, tr)
		if err != nil {
			slog.Default().ErrorContext(r.Context(), "can't compute "+name,
				slog.Int("companyId", companyID),
				slog.String("err", err.Error()),
			)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "can't compute " + name, Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, response{Success: true, Data: data, Period: windowPeriod(tr)})
	}
}

func (s *Server) productFunnel(w http.ResponseWriter, r *http.Request) {
	companyID, err := CompanyID(r.Context())
	if err != nil {
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "can't resolve company", Error: err.Error()})
		return
	}
	productID, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil || productID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid product id", Error: "productId must be a positive integer"})
		return
	}
	tr := engine.ResolveWindow(queryWindow(r), time.Now())

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	funnel, err := s.eng.ProductFunnel(ctx, companyID, productID, tr)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Message: "product not found", Error: err.Error()})
			return
		}
		slog.Default().ErrorContext(r.Context(), "can't compute product funnel",
			slog.Int("companyId", companyID),
			slog.Int("productId", productID),
			slog.String("err", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "can't compute product funnel", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: funnel, Period: windowPeriod(tr)})
}

func (s *Server) topProducts(w http.ResponseWriter, r *http.Request) {
	companyID, err := CompanyID(r.Context())
	if err != nil {
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "can't resolve company", Error: err.Error()})
		return
	}
	limit := s.limit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	tr := engine.ResolveWindow(queryWindow(r), time.Now())

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	products, err := s.eng.TopProducts(ctx, companyID, tr, limit)
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "can't compute top products",
			slog.Int("companyId", companyID),
			slog.String("err", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "can't compute top products", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: products, Period: windowPeriod(tr)})
}

// customerScores defaults to an all-time view: the window only applies when
// the caller passed any date input at all.
func (s *Server) customerScores(w http.ResponseWriter, r *http.Request) {
	companyID, err := CompanyID(r.Context())
	if err != nil {
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "can't resolve company", Error: err.Error()})
		return
	}
	var tr entity.TimeRange
	if wq := queryWindow(r); wq.Explicit() {
		tr = engine.ResolveWindow(wq, time.Now())
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	scores, err := s.eng.CustomerScores(ctx, companyID, tr)
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "can't compute customer scores",
			slog.Int("companyId", companyID),
			slog.String("err", err.Error()),
		)
		writeJSON(w, http.StatusOK, response{Success: true, Data: []entity.CustomerScore{}, Period: windowPeriod(tr), Error: "analytics temporarily unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: scores, Period: windowPeriod(tr)})
}
