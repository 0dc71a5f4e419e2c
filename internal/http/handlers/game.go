package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/game"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"

	"github.com/gin-gonic/gin"
)

type cellRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

type inputRequest struct {
	Source    game.PointerSource `json:"source" binding:"required"`
	Row       int                `json:"row"`
	Col       int                `json:"col"`
	Secondary bool               `json:"secondary"`
	HeldMS    int64              `json:"held_ms"`
}

// sessionError maps service sentinels to HTTP statuses
func sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, service.ErrNotSessionOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
	case errors.Is(err, service.ErrInvalidVariant),
		errors.Is(err, service.ErrInvalidDifficulty),
		errors.Is(err, service.ErrInvalidTier):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownUser), errors.Is(err, service.ErrUserInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// StartGame begins a solo session: {"variant","difficulty","timebomb_tier"}
func (h *Handler) StartGame(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var p service.StartParams
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	who, err := h.Identity.Identify(c.Request.Context(), userID)
	if err != nil {
		sessionError(c, err)
		return
	}

	view, err := h.Sessions.Start(c.Request.Context(), *who, p)
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) CurrentGame(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	view, ok := h.Sessions.Current(userID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) GameState(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	view, err := h.Sessions.State(userID, c.Param("id"))
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) Reveal(c *gin.Context) {
	h.cellMove(c, h.Sessions.Reveal)
}

func (h *Handler) Flag(c *gin.Context) {
	h.cellMove(c, h.Sessions.Flag)
}

func (h *Handler) cellMove(c *gin.Context, move func(userID int64, id string, row, col int) (*service.SessionView, error)) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req cellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "row and col are required"})
		return
	}

	view, err := move(userID, c.Param("id"), *req.Row, *req.Col)
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) Hint(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	view, err := h.Sessions.Hint(userID, c.Param("id"))
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Input takes a raw pointer or touch event; duplicates come back with "debounced": true
func (h *Handler) Input(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input event"})
		return
	}
	if req.Source != game.SourceMouse && req.Source != game.SourceTouch {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown input source"})
		return
	}

	view, err := h.Sessions.Input(userID, c.Param("id"), game.InputEvent{
		Source:    req.Source,
		Row:       req.Row,
		Col:       req.Col,
		Secondary: req.Secondary,
		HeldMS:    req.HeldMS,
		At:        time.Now(),
	})
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) NewGame(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	view, err := h.Sessions.NewGame(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) QuitGame(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := h.Sessions.Quit(c.Request.Context(), userID, c.Param("id")); err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "quit"})
}
