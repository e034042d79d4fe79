package room

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GET /rooms
func (h *Handler) List(c *gin.Context) {
	rooms, err := h.svc.ListOpenRooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ListResponse{Rooms: rooms})
}

// POST /rooms  body: {label?, maxPlayers}
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.svc.CreateRoom(c.Request.Context(), c.GetString("playerId"), c.GetString("playerName"), req.Label, req.MaxPlayers)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, RoomResponse{Room: r})
}

// GET /rooms/:id
func (h *Handler) Get(c *gin.Context) {
	r, err := h.svc.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, RoomResponse{Room: r})
}

// POST /rooms/:id/join
func (h *Handler) Join(c *gin.Context) {
	r, err := h.svc.JoinRoom(c.Request.Context(), c.Param("id"), c.GetString("playerId"), c.GetString("playerName"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, RoomResponse{Room: r})
}

// POST /rooms/:id/leave
func (h *Handler) Leave(c *gin.Context) {
	if err := h.svc.LeaveRoom(c.Request.Context(), c.Param("id"), c.GetString("playerId")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /rooms/:id/start
func (h *Handler) Start(c *gin.Context) {
	state, err := h.svc.StartGame(c.Request.Context(), c.Param("id"), c.GetString("playerId"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// POST /rooms/:id/reset
func (h *Handler) Reset(c *gin.Context) {
	if err := h.svc.ResetRoom(c.Request.Context(), c.Param("id"), c.GetString("playerId")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func statusFor(err error) int {
	switch err {
	case ErrRoomNotFound, ErrGameNotFound:
		return http.StatusNotFound
	case ErrNotHost:
		return http.StatusForbidden
	case ErrRoomStarted, ErrRoomFull, ErrStaleState:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
