package manager

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kaboom/internal/game/engine"
	"kaboom/internal/room"
)

type Handler struct {
	mgr *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

type peekRequest struct {
	CardIndex *int `json:"cardIndex" binding:"required"`
}

type replaceRequest struct {
	HandIndex *int `json:"handIndex" binding:"required"`
}

// GET /rooms/:id/game — 轮询入口
func (h *Handler) State(c *gin.Context) {
	state, err := h.mgr.State(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// POST /rooms/:id/game/peek  body: {cardIndex}
func (h *Handler) Peek(c *gin.Context) {
	var req peekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	card, state, err := h.mgr.Peek(c.Request.Context(), c.Param("id"), c.GetString("playerId"), *req.CardIndex)
	if err != nil {
		fail(c, err)
		return
	}
	// card 只回给发起者本人，状态本身不泄露未翻开的牌面归属
	c.JSON(http.StatusOK, gin.H{"card": card, "state": state})
}

// POST /rooms/:id/game/peek/done
func (h *Handler) CompletePeeking(c *gin.Context) {
	h.respond(c, func() (*engine.GameState, error) {
		return h.mgr.CompletePeeking(c.Request.Context(), c.Param("id"), c.GetString("playerId"))
	})
}

// POST /rooms/:id/game/draw
func (h *Handler) Draw(c *gin.Context) {
	h.respond(c, func() (*engine.GameState, error) {
		return h.mgr.Draw(c.Request.Context(), c.Param("id"), c.GetString("playerId"))
	})
}

// POST /rooms/:id/game/replace  body: {handIndex}
func (h *Handler) Replace(c *gin.Context) {
	var req replaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, func() (*engine.GameState, error) {
		return h.mgr.Replace(c.Request.Context(), c.Param("id"), c.GetString("playerId"), *req.HandIndex)
	})
}

// POST /rooms/:id/game/discard
func (h *Handler) Discard(c *gin.Context) {
	h.respond(c, func() (*engine.GameState, error) {
		return h.mgr.Discard(c.Request.Context(), c.Param("id"), c.GetString("playerId"))
	})
}

// POST /rooms/:id/game/kaboom
func (h *Handler) CallKaboom(c *gin.Context) {
	h.respond(c, func() (*engine.GameState, error) {
		return h.mgr.CallKaboom(c.Request.Context(), c.Param("id"), c.GetString("playerId"))
	})
}

// POST /rooms/:id/game/reaction  body: engine.ReactionAction
func (h *Handler) ResolveReaction(c *gin.Context) {
	var act engine.ReactionAction
	if err := c.ShouldBindJSON(&act); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, func() (*engine.GameState, error) {
		return h.mgr.ResolveReaction(c.Request.Context(), c.Param("id"), c.GetString("playerId"), act)
	})
}

// POST /rooms/:id/game/score
func (h *Handler) FinishScoring(c *gin.Context) {
	h.respond(c, func() (*engine.GameState, error) {
		return h.mgr.FinishScoring(c.Request.Context(), c.Param("id"))
	})
}

func (h *Handler) respond(c *gin.Context, fn func() (*engine.GameState, error)) {
	state, err := fn()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error(), "kind": kindFor(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, room.ErrGameNotFound), errors.Is(err, room.ErrRoomNotFound), errors.Is(err, engine.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrNotYourTurn):
		return http.StatusForbidden
	case errors.Is(err, room.ErrStaleState):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// kindFor 返回稳定的错误类别，前端据此决定提示文案与是否重试。
func kindFor(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidPhase):
		return "invalid_phase"
	case errors.Is(err, engine.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, engine.ErrPlayerNotFound):
		return "player_not_found"
	case errors.Is(err, engine.ErrIndexOutOfRange):
		return "card_index_out_of_range"
	case errors.Is(err, engine.ErrActionAlreadyTaken):
		return "action_already_taken"
	case errors.Is(err, room.ErrStaleState):
		return "stale_state"
	case errors.Is(err, room.ErrGameNotFound):
		return "game_not_found"
	case errors.Is(err, room.ErrRoomNotFound):
		return "room_not_found"
	default:
		return "bad_request"
	}
}
