package handler

import (
	"github.com/gin-gonic/gin"

	"incentix/rewardhub/internal/service"
	"incentix/rewardhub/pkg/response"
)

type ParticipantHandler struct {
	ledger service.ParticipantLedger
	badges service.BadgeIssuer
	engine service.RedemptionEngine
	policy service.TierPolicy
}

func NewParticipantHandler(ledger service.ParticipantLedger, badges service.BadgeIssuer, engine service.RedemptionEngine, policy service.TierPolicy) *ParticipantHandler {
	return &ParticipantHandler{ledger: ledger, badges: badges, engine: engine, policy: policy}
}

type RegisterRequest struct {
	ID         string `json:"id" binding:"required"`
	ProfileRef string `json:"profile_ref" binding:"required"`
}

func (h *ParticipantHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	participant, err := h.ledger.Register(c.Request.Context(), req.ID, req.ProfileRef)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, participant)
}

type EarnRequest struct {
	RawPoints int64             `json:"raw_points" binding:"required"`
	Metadata  map[string]string `json:"metadata"`
}

func (h *ParticipantHandler) Earn(c *gin.Context) {
	var req EarnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.ledger.Earn(c.Request.Context(), c.Param("id"), req.RawPoints, req.Metadata)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, result)
}

type RecordActivityRequest struct {
	RawUnits  int64             `json:"raw_units" binding:"required"`
	HasStreak bool              `json:"has_streak"`
	Metadata  map[string]string `json:"metadata"`
}

func (h *ParticipantHandler) RecordActivity(c *gin.Context) {
	var req RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.ledger.RecordActivity(c.Request.Context(), c.Param("id"), req.RawUnits, req.HasStreak, req.Metadata)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, result)
}

type ReferralRequest struct {
	RefereeID string `json:"referee_id" binding:"required"`
}

func (h *ParticipantHandler) Referral(c *gin.Context) {
	var req ReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.ledger.AwardReferralBonus(c.Request.Context(), c.Param("id"), req.RefereeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// Get returns the participant together with the structured benefits of their
// current tier. Presentation (names, copy) is left to the consumer.
func (h *ParticipantHandler) Get(c *gin.Context) {
	participant, err := h.ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	def, err := h.policy.Definition(participant.CurrentTier)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	eligible, target, needed := h.policy.CheckUpgrade(participant.TotalPoints, participant.CurrentTier)

	response.Success(c, gin.H{
		"participant": participant,
		"tier":        def,
		"upgrade": gin.H{
			"eligible":      eligible,
			"target":        target,
			"points_needed": needed,
		},
	})
}

func (h *ParticipantHandler) Badges(c *gin.Context) {
	badges, err := h.badges.ListFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, badges)
}

func (h *ParticipantHandler) Redemptions(c *gin.Context) {
	recs, err := h.engine.ListFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, recs)
}
