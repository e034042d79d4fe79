package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type GuestRequest struct {
	Name string `json:"name" binding:"required"`
}

type Handler struct {
	secret []byte
	ttl    time.Duration
}

// 工厂方法：创建 handler
func NewHandler(secret []byte, ttl time.Duration) *Handler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Handler{secret: secret, ttl: ttl}
}

// Guest 游客登录：客户端只提供昵称，服务端发放玩家 ID 与 JWT。
// 同一昵称可以重复登录，每次得到新的身份。
func (h *Handler) Guest(c *gin.Context) {
	var req GuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 24 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must be 1-24 characters"})
		return
	}

	playerID := uuid.NewString()
	claims := jwt.MapClaims{
		"sub":  playerID,
		"name": name,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(h.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtStr, err := token.SignedString(h.secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"playerId": playerID,
		"name":     name,
		"jwt":      jwtStr,
	})
}
