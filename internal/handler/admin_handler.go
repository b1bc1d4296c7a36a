package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"incentix/rewardhub/internal/model"
	"incentix/rewardhub/internal/service"
	jwtpkg "incentix/rewardhub/pkg/jwt"
	"incentix/rewardhub/pkg/response"
)

type AdminHandler struct {
	catalog   service.CouponCatalog
	inventory service.InventoryVault
	ledger    service.ParticipantLedger
	badges    service.BadgeIssuer
	policy    service.TierPolicy
	guard     *service.Guard
	binder    service.CallerBinder
	jwt       *jwtpkg.Manager
}

func NewAdminHandler(
	catalog service.CouponCatalog,
	inventory service.InventoryVault,
	ledger service.ParticipantLedger,
	badges service.BadgeIssuer,
	policy service.TierPolicy,
	guard *service.Guard,
	binder service.CallerBinder,
	jwt *jwtpkg.Manager,
) *AdminHandler {
	return &AdminHandler{
		catalog:   catalog,
		inventory: inventory,
		ledger:    ledger,
		badges:    badges,
		policy:    policy,
		guard:     guard,
		binder:    binder,
		jwt:       jwt,
	}
}

type CreateCouponRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PointsCost  int64  `json:"points_cost" binding:"required"`
	Value       int64  `json:"value" binding:"required"`
	Category    string `json:"category"`
	MaxSupply   int64  `json:"max_supply" binding:"required"`
}

func (h *AdminHandler) CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	coupon, err := h.catalog.CreateCoupon(c.Request.Context(), req.Name, req.Description, req.PointsCost, req.Value, req.Category, req.MaxSupply)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, coupon)
}

type UpdateRatesRequest struct {
	PointsCost int64 `json:"points_cost" binding:"required"`
	Value      int64 `json:"value" binding:"required"`
}

func (h *AdminHandler) UpdateRates(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.catalog.UpdateExchangeRates(c.Request.Context(), id, req.PointsCost, req.Value); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *AdminHandler) SetActive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.catalog.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

type ManageInventoryRequest struct {
	Action string `json:"action" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
}

func (h *AdminHandler) ManageInventory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ManageInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.inventory.ManageInventory(c.Request.Context(), id, req.Action, req.Amount); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *AdminHandler) InventoryReport(c *gin.Context) {
	report, err := h.inventory.Report(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, report)
}

func (h *AdminHandler) UpdateTier(c *gin.Context) {
	ordinal, err := strconv.Atoi(c.Param("ordinal"))
	if err != nil {
		response.BadRequest(c, "invalid tier ordinal")
		return
	}
	var def service.TierDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.policy.UpdateConfig(c.Request.Context(), model.Tier(ordinal), def); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *AdminHandler) Pause(c *gin.Context) {
	if err := h.guard.SetPaused(c.Request.Context(), true); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"paused": true})
}

func (h *AdminHandler) Unpause(c *gin.Context) {
	if err := h.guard.SetPaused(c.Request.Context(), false); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"paused": false})
}

type RebindCallersRequest struct {
	Bindings map[service.Capability][]string `json:"bindings" binding:"required"`
}

// RebindCallers replaces which collaborating-service identities may invoke
// which capability group.
func (h *AdminHandler) RebindCallers(c *gin.Context) {
	var req RebindCallersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.binder.Rebind(c.Request.Context(), req.Bindings); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, h.binder.Bindings())
}

type IssueTokenRequest struct {
	Subject string `json:"subject" binding:"required"`
	Role    string `json:"role" binding:"required"`
}

func (h *AdminHandler) IssueToken(c *gin.Context) {
	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Role != string(service.RoleOperator) && req.Role != string(service.RoleService) {
		response.BadRequest(c, "unknown role")
		return
	}

	token, err := h.jwt.Generate(req.Subject, req.Role)
	if err != nil {
		response.InternalError(c, "failed to sign token")
		return
	}
	response.Success(c, gin.H{"token": token})
}

type RetypeBadgeRequest struct {
	Type string `json:"type" binding:"required"`
}

func (h *AdminHandler) RetypeBadge(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req RetypeBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.badges.Retype(c.Request.Context(), id, model.BadgeType(req.Type)); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *AdminHandler) BurnBadge(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.badges.Burn(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *AdminHandler) DeactivateParticipant(c *gin.Context) {
	if err := h.ledger.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
