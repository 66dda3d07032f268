package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ripplix/internal/domain"
	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/repository"
	"ripplix/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ===== Auth =====

func (s *Server) loginHandler() http.HandlerFunc {
	type request struct {
		APIKey string `json:"api_key"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if s.apiKey == "" || req.APIKey != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		token, err := s.auth.Mint(w)
		if err != nil {
			http.Error(w, "Failed to mint session", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

// ===== Stats =====

func (s *Server) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.expiryUC.Snapshot(r.Context(), time.Now())
		if err != nil {
			s.log.Error().Err(err).Msg("stats snapshot failed")
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			ActivePaid     int `json:"active_paid"`
			ExpiringSoon   int `json:"expiring_soon"`
			ExpiredPending int `json:"expired_pending"`
			MonthlyUsers   int `json:"monthly_users"`
			YearlyUsers    int `json:"yearly_users"`
			LifetimeUsers  int `json:"lifetime_users"`
			FreeMembers    int `json:"free_members"`
		}{
			ActivePaid:     stats.ActivePaid,
			ExpiringSoon:   stats.ExpiringSoon,
			ExpiredPending: stats.ExpiredPending,
			MonthlyUsers:   stats.MonthlyUsers,
			YearlyUsers:    stats.YearlyUsers,
			LifetimeUsers:  stats.LifetimeUsers,
			FreeMembers:    stats.FreeMembers,
		})
	}
}

// ===== Plans =====

// planResponse renders capacities as nullable ints; null means unlimited.
type planResponse struct {
	ID               string `json:"id"`
	Slug             string `json:"slug"`
	Name             string `json:"name"`
	PriceCents       int64  `json:"price_cents"`
	Currency         string `json:"currency"`
	BillingPeriod    string `json:"billing_period"`
	MaxBoards        *int32 `json:"max_boards"`
	MaxItemsPerBoard *int32 `json:"max_items_per_board"`
	CanShare         bool   `json:"can_share"`
	StudentDiscount  *int   `json:"student_discount_percent"`
	IsActive         bool   `json:"is_active"`
	SortOrder        int    `json:"sort_order"`
}

func capacityJSON(c model.Capacity) *int32 {
	if c.IsUnlimited() {
		return nil
	}
	n := c.Limit()
	return &n
}

func toPlanResponse(p *model.PricingPlan) planResponse {
	return planResponse{
		ID:               p.ID,
		Slug:             p.Slug,
		Name:             p.Name,
		PriceCents:       p.PriceCents,
		Currency:         p.Currency,
		BillingPeriod:    string(p.BillingPeriod),
		MaxBoards:        capacityJSON(p.MaxBoards),
		MaxItemsPerBoard: capacityJSON(p.MaxItemsPerBoard),
		CanShare:         p.CanShare,
		StudentDiscount:  p.StudentDiscountPercent,
		IsActive:         p.IsActive,
		SortOrder:        p.SortOrder,
	}
}

func (s *Server) plansListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := s.catalog.List(r.Context())
		if err != nil {
			http.Error(w, "Failed to list plans", http.StatusInternalServerError)
			return
		}
		out := make([]planResponse, 0, len(plans))
		for _, p := range plans {
			out = append(out, toPlanResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type planCreateRequest struct {
	Slug             string `json:"slug"`
	Name             string `json:"name"`
	PriceCents       int64  `json:"price_cents"`
	Currency         string `json:"currency"`
	BillingPeriod    string `json:"billing_period"`
	MaxBoards        *int32 `json:"max_boards"`
	MaxItemsPerBoard *int32 `json:"max_items_per_board"`
	CanShare         bool   `json:"can_share"`
	SortOrder        int    `json:"sort_order"`
}

func capacityFromJSON(n *int32) model.Capacity {
	if n == nil {
		return model.Unlimited()
	}
	return model.Limited(*n)
}

func (s *Server) planCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req planCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		plan, err := model.NewPricingPlan(
			uuid.NewString(), req.Slug, req.Name, req.PriceCents,
			model.BillingPeriod(req.BillingPeriod),
			capacityFromJSON(req.MaxBoards), capacityFromJSON(req.MaxItemsPerBoard),
			req.CanShare,
		)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Currency != "" {
			plan.Currency = req.Currency
		}
		plan.SortOrder = req.SortOrder
		if err := s.catalog.Save(r.Context(), plan); err != nil {
			http.Error(w, "Failed to create plan", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, toPlanResponse(plan))
	}
}

func (s *Server) planDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		err := s.catalog.Delete(r.Context(), id)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, domain.ErrPlanReferenced):
			http.Error(w, "Plan still has subscribed users", http.StatusConflict)
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Plan not found", http.StatusNotFound)
		default:
			http.Error(w, "Failed to delete plan", http.StatusInternalServerError)
		}
	}
}

// ===== Gateways =====

func (s *Server) gatewaysHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gw, err := s.gwUC.Active(r.Context())
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, gw)
		case errors.Is(err, domain.ErrNoActiveGateway):
			http.Error(w, "No active payment gateway", http.StatusConflict)
		case errors.Is(err, domain.ErrMultipleActiveGateways):
			http.Error(w, "More than one active payment gateway", http.StatusConflict)
		default:
			http.Error(w, "Failed to resolve gateway", http.StatusInternalServerError)
		}
	}
}

// ===== Payment drift =====

type driftResponse struct {
	PaymentID      string     `json:"payment_id"`
	TransactionID  string     `json:"transaction_id"`
	UserID         string     `json:"user_id"`
	ExpectedPlanID string     `json:"expected_plan_id"`
	ActualPlanID   *string    `json:"actual_plan_id"`
	PaidAt         *time.Time `json:"paid_at"`
}

func toDriftResponses(drifts []usecase.Drift) []driftResponse {
	out := make([]driftResponse, 0, len(drifts))
	for _, d := range drifts {
		out = append(out, driftResponse{
			PaymentID:      d.PaymentID,
			TransactionID:  d.TransactionID,
			UserID:         d.UserID,
			ExpectedPlanID: d.ExpectedPlanID,
			ActualPlanID:   d.ActualPlanID,
			PaidAt:         d.PaidAt,
		})
	}
	return out
}

func (s *Server) driftAuditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var (
			report *usecase.AuditReport
			err    error
		)
		if userID := r.URL.Query().Get("user_id"); userID != "" {
			report, err = s.reconUC.AuditUser(ctx, userID)
		} else {
			var since *time.Time
			if hours, _ := strconv.Atoi(r.URL.Query().Get("since_hours")); hours > 0 {
				t := time.Now().Add(-time.Duration(hours) * time.Hour)
				since = &t
			}
			report, err = s.reconUC.Audit(ctx, since)
		}
		if err != nil {
			s.log.Error().Err(err).Msg("payment audit failed")
			http.Error(w, "Failed to audit payments", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Checked int             `json:"checked"`
			Drifts  []driftResponse `json:"drifts"`
		}{Checked: report.Checked, Drifts: toDriftResponses(report.Drifts)})
	}
}

func (s *Server) driftRepairHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		audit, err := s.reconUC.Audit(ctx, nil)
		if err != nil {
			http.Error(w, "Failed to audit payments", http.StatusInternalServerError)
			return
		}
		repair, err := s.reconUC.Repair(ctx, audit.Drifts)
		if err != nil {
			http.Error(w, "Failed to repair payments", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Attempted int `json:"attempted"`
			Repaired  int `json:"repaired"`
			Failed    int `json:"failed"`
		}{Attempted: repair.Attempted, Repaired: repair.Repaired, Failed: repair.Failed})
	}
}

// ===== Boards =====

const upgradeRequiredMsg = "Plan limit reached; upgrade to continue"

func (s *Server) loadUser(w http.ResponseWriter, r *http.Request, userID string) *model.User {
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return nil
	}
	user, err := s.users.FindByID(r.Context(), repository.NoTX, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
		} else {
			http.Error(w, "Failed to load user", http.StatusInternalServerError)
		}
		return nil
	}
	return user
}

func (s *Server) boardCreateHandler() http.HandlerFunc {
	type request struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		user := s.loadUser(w, r, req.UserID)
		if user == nil {
			return
		}
		ok, err := s.entUC.CanCreateBoard(r.Context(), user)
		if err != nil {
			http.Error(w, "Failed to check entitlement", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, upgradeRequiredMsg, http.StatusForbidden)
			return
		}
		board, err := model.NewBoard(uuid.NewString(), user.ID, req.Name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.boards.Save(r.Context(), repository.NoTX, board); err != nil {
			http.Error(w, "Failed to create board", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, board)
	}
}

func (s *Server) boardAddItemHandler() http.HandlerFunc {
	type request struct {
		UserID string `json:"user_id"`
		ItemID string `json:"item_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		boardID := chi.URLParam(r, "id")
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.ItemID == "" {
			http.Error(w, "item_id is required", http.StatusBadRequest)
			return
		}
		user := s.loadUser(w, r, req.UserID)
		if user == nil {
			return
		}
		ok, err := s.entUC.CanAddItem(r.Context(), user, boardID)
		if err != nil {
			http.Error(w, "Failed to check entitlement", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, upgradeRequiredMsg, http.StatusForbidden)
			return
		}
		if err := s.boards.AddItem(r.Context(), repository.NoTX, boardID, req.ItemID); err != nil {
			http.Error(w, "Failed to add item", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) boardShareHandler() http.HandlerFunc {
	type request struct {
		UserID string `json:"user_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		boardID := chi.URLParam(r, "id")
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		user := s.loadUser(w, r, req.UserID)
		if user == nil {
			return
		}
		ok, err := s.entUC.CanShare(r.Context(), user)
		if err != nil {
			http.Error(w, "Failed to check entitlement", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, upgradeRequiredMsg, http.StatusForbidden)
			return
		}
		if err := s.boards.SetShared(r.Context(), repository.NoTX, boardID, true); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Board not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to share board", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
