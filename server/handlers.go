package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	contractx "github.com/vinayakrana/Hotel-Chat-BE/agent/contract"
	ledgerx "github.com/vinayakrana/Hotel-Chat-BE/agent/ledger"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type chatResponse struct {
	Response string `json:"response"`
	Role     string `json:"role"`
	UserName string `json:"user_name"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "message is required"})
		return
	}

	caller := callerIdentity(c)
	result, err := s.orchestrator.Exchange(c.Request.Context(), caller, req.Message)
	if err != nil {
		log.Error().Err(err).
			Str("request_id", c.GetString(headerRequestID)).
			Str("caller", caller.Email).
			Msg("exchange failed")
		status := http.StatusInternalServerError
		if errors.Is(err, contractx.ErrRoundLimit) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"detail": "Error processing chat"})
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		Response: result.Reply,
		Role:     string(caller.Role),
		UserName: caller.Name,
	})
}

func (s *Server) handleRooms(c *gin.Context) {
	rooms, err := s.ledger.SearchAvailable(c.Request.Context(), ledgerx.SearchFilter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error retrieving rooms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(rooms),
		"rooms": rooms,
	})
}

func (s *Server) handleBookings(c *gin.Context) {
	caller := callerIdentity(c)
	bookings, err := s.ledger.ListByGuest(c.Request.Context(), caller.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error retrieving bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":     caller.Name,
		"email":    caller.Email,
		"count":    len(bookings),
		"bookings": bookings,
	})
}

func (s *Server) handleAgentInfo(c *gin.Context) {
	caller := callerIdentity(c)
	names := s.catalog.NamesFor(caller.Role)
	c.JSON(http.StatusOK, gin.H{
		"user": caller,
		"agent": gin.H{
			"role":        caller.Role,
			"tools_count": len(names),
			"tool_names":  names,
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	modelCheck := "configured"
	if !s.modelReady {
		status = "degraded"
		modelCheck = "missing"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"service": "hotel-chat",
		"checks": gin.H{
			"model_api_key": modelCheck,
		},
	})
}
