package obligation

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Handler serves one side of the ledger. The same handler type is mounted
// twice, once per side.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	side     Side
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, side Side) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		side:     side,
		validate: validator.New(),
	}
}

// MountRoutes registers the obligation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/obligations", h.list)
	r.Post("/obligations", h.create)
	r.Post("/obligations/installments", h.createInstallments)
	r.Delete("/obligations", h.deleteAll)
	r.Get("/obligations/{id}", h.get)
	r.Patch("/obligations/{id}", h.update)
	r.Post("/obligations/{id}/status", h.changeStatus)
	r.Delete("/obligations/{id}", h.remove)
	r.Get("/obligations/{id}/history", h.history)
	r.Get("/summary", h.summary)
	r.Get("/breakdown", h.breakdown)
	r.Get("/forecast", h.forecast)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), h.side)
	if err != nil {
		h.logger.Error("list obligations", "side", h.side, "error", err)
		httpx.RespondError(w, err)
		return
	}

	query, err := queryFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	today := h.service.Today()
	page, pagination := query.Apply(items, today)
	httpx.JSON(w, http.StatusOK, listResponse{
		Items:      newObligationResponses(page, today),
		Pagination: pagination,
		Summary:    Summarize(items, today),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newObligationResponse(o, h.service.Today()))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createObligationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toInput(h.side)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	o, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("create obligation", "side", h.side, "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newObligationResponse(o, h.service.Today()))
}

func (h *Handler) createInstallments(w http.ResponseWriter, r *http.Request) {
	var req createInstallmentsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	plan, err := req.toPlan(h.side)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	group, err := h.service.CreateInstallmentGroup(r.Context(), plan)
	if err != nil {
		h.logger.Error("create installment group", "side", h.side, "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"items": newObligationResponses(group, h.service.Today()),
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req updateObligationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	o, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newObligationResponse(o, h.service.Today()))
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req changeStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	o, err := h.service.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newObligationResponse(o, h.service.Today()))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) deleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAll(r.Context(), h.side); err != nil {
		h.logger.Error("delete all obligations", "side", h.side, "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	events, err := h.service.History(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": newEventResponses(events)})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summarize(r.Context(), h.side)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) breakdown(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), h.side)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	switch r.URL.Query().Get("type") {
	case "", "monthly":
		httpx.JSON(w, http.StatusOK, map[string]any{"months": MonthlyBreakdown(items)})
	case "category":
		httpx.JSON(w, http.StatusOK, map[string]any{"rows": CategoryBreakdown(items)})
	case "counterparty":
		httpx.JSON(w, http.StatusOK, map[string]any{"rows": CounterpartyBreakdown(items)})
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "type must be monthly, category or counterparty")
	}
}

func (h *Handler) forecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	monthsAhead := 0
	if raw := q.Get("months_ahead"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "months_ahead must be a positive integer")
			return
		}
		monthsAhead = n
	}
	filter := ForecastFilter{
		CategoryID:     int64Param(q.Get("category_id")),
		CounterpartyID: int64Param(q.Get("counterparty_id")),
		Status:         Status(q.Get("status")),
		CostType:       CostType(q.Get("cost_type")),
	}
	forecast, err := h.service.Analyze(r.Context(), h.side, monthsAhead, filter)
	if err != nil {
		h.logger.Error("forecast", "side", h.side, "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, forecast)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryFromRequest(r *http.Request) (Query, error) {
	q := r.URL.Query()
	query := Query{
		Filter: Filter{
			Search:         q.Get("search"),
			Status:         Status(q.Get("status")),
			Kind:           Kind(q.Get("kind")),
			CategoryID:     int64Param(q.Get("category_id")),
			CounterpartyID: int64Param(q.Get("counterparty_id")),
		},
		Sort: Sort{
			Field: SortField(q.Get("sort")),
			Desc:  q.Get("dir") == "desc",
		},
		Page:    1,
		PerPage: DefaultPageSize,
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err == nil && page > 0 {
			query.Page = page
		}
	}
	if raw := q.Get("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err == nil && perPage > 0 {
			query.PerPage = perPage
		}
	}
	var err error
	if query.Filter.AmountMin, err = decimalParam(q.Get("amount_min")); err != nil {
		return Query{}, err
	}
	if query.Filter.AmountMax, err = decimalParam(q.Get("amount_max")); err != nil {
		return Query{}, err
	}
	if query.Filter.EntryFrom, err = dateParam(q.Get("entry_from")); err != nil {
		return Query{}, err
	}
	if query.Filter.EntryTo, err = dateParam(q.Get("entry_to")); err != nil {
		return Query{}, err
	}
	return query, nil
}

func int64Param(raw string) *int64 {
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func decimalParam(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid amount %q", shared.ErrValidation, raw)
	}
	return &d, nil
}

func dateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
