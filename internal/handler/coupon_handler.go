package handler

import (
	"github.com/gin-gonic/gin"

	"incentix/rewardhub/internal/service"
	"incentix/rewardhub/pkg/response"
)

type CouponHandler struct {
	catalog service.CouponCatalog
	engine  service.RedemptionEngine
}

func NewCouponHandler(catalog service.CouponCatalog, engine service.RedemptionEngine) *CouponHandler {
	return &CouponHandler{catalog: catalog, engine: engine}
}

func (h *CouponHandler) List(c *gin.Context) {
	coupons, err := h.catalog.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, coupons)
}

func (h *CouponHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	coupon, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, coupon)
}

type PurchaseRequest struct {
	BuyerID string `json:"buyer_id" binding:"required"`
}

func (h *CouponHandler) Purchase(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	receipt, err := h.engine.Purchase(c.Request.Context(), id, req.BuyerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, receipt)
}

type RedeemRequest struct {
	OwnerID string `json:"owner_id" binding:"required"`
}

func (h *CouponHandler) Redeem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	code, err := h.engine.Redeem(c.Request.Context(), id, req.OwnerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"redemption_id": id, "code": code})
}

type ValidateRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *CouponHandler) Validate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.engine.ValidateRedemption(c.Request.Context(), id, req.Code)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, result)
}
