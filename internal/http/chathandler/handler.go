package chathandler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"storechatgo/internal/services/chat"
	"storechatgo/internal/ws"
)

type Handler struct {
	svc      chat.IChatService
	registry *ws.Registry
}

func New(svc chat.IChatService, registry *ws.Registry) *Handler {
	return &Handler{svc: svc, registry: registry}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/chat/rooms/:id/messages", h.history)
	r.POST("/chat/rooms/:id/read", h.markRead)
	r.GET("/chat/online", h.online)
}

// @Summary		Room message history
// @Description	Returns the most recent messages of a room, oldest first.
// @Tags			Chat
// @Param			id		path	string	true	"Room ID"				default(general)
// @Param			limit	query	int		false	"Max messages (1-500)"	minimum(1)	maximum(500)	default(50)
// @Success		200	{array}		chat.ChatMessageDTO
// @Failure		400	{object}	ErrorResponse
// @Failure		500	{object}	ErrorResponse
// @Router			/chat/rooms/{id}/messages [get]
func (h *Handler) history(c *gin.Context) {
	var q HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	out, err := h.svc.RecentMessages(c.Request.Context(), c.Param("id"), q.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary		Mark room messages as read
// @Description	Read-receipt flow: flips is_read on messages the caller did not author.
// @Tags			Chat
// @Param			id		path	string			true	"Room ID"	default(support-user123)
// @Param			body	body	MarkReadBody	true	"Reader payload"
// @Success		200	{object}	MarkReadResponse
// @Failure		400	{object}	ErrorResponse
// @Failure		500	{object}	ErrorResponse
// @Router			/chat/rooms/{id}/read [post]
func (h *Handler) markRead(ginCtx *gin.Context) {
	var body MarkReadBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	updated, err := h.svc.MarkRead(ginCtx.Request.Context(), ginCtx.Param("id"), body.UserID)
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, MarkReadResponse{Updated: updated})
}

// @Summary		Online users
// @Description	Lists the user ids with a live connection to this instance.
// @Tags			Chat
// @Success		200	{object}	OnlineResponse
// @Router			/chat/online [get]
func (h *Handler) online(c *gin.Context) {
	users := h.registry.Online()
	sort.Strings(users)
	c.JSON(http.StatusOK, OnlineResponse{Users: users})
}
