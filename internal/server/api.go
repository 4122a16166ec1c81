package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"kitten-defense/internal/game"
	"kitten-defense/internal/protocol"
	"kitten-defense/pkg/maps"
)

// httpSource is the roster source name for units reported over HTTP.
const httpSource = "http"

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/api")
	api.GET("/layouts", handleLayouts)
	api.GET("/territories", s.handleListTerritories)
	api.POST("/territories", s.handleCreateTerritory)
	api.GET("/territories/at", s.handleTerritoryAt)
	api.GET("/territories/:id", s.handleGetTerritory)
	api.GET("/territories/:id/history", s.handleTerritoryHistory)
	api.POST("/territories/:id/units", s.handleReportUnits)
	api.GET("/ledger/totals", s.handleLedgerTotals)

	return r
}

// apiError writes an error body using the websocket error codes.
func apiError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := errorCode(err)
	switch code {
	case protocol.ErrCodeInvalidPayload, protocol.ErrCodeInvalidTerritory, protocol.ErrCodeInvalidResource:
		status = http.StatusBadRequest
	case protocol.ErrCodeUnknownTerritory, protocol.ErrCodeUnknownGenerator, protocol.ErrCodeUnknownCollectionPoint:
		status = http.StatusNotFound
	case protocol.ErrCodeDuplicateTerritory:
		status = http.StatusConflict
	}
	c.JSON(status, protocol.ErrorPayload{Code: code, Message: err.Error()})
}

var errNoDatabase = errors.New("history is not recorded on this server")

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status":      "ok",
		"tick":        s.currentTick(),
		"territories": s.reg.Len(),
		"clients":     s.hub.ClientCount(),
	}
	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			body["status"] = "degraded"
			body["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}

func handleLayouts(c *gin.Context) {
	c.JSON(http.StatusOK, maps.List())
}

func (s *Server) handleListTerritories(c *gin.Context) {
	c.JSON(http.StatusOK, protocol.TerritoryListPayload{Territories: s.reg.Territories()})
}

func (s *Server) handleGetTerritory(c *gin.Context) {
	t, ok := s.reg.GetTerritory(c.Param("id"))
	if !ok {
		apiError(c, unknownTerritory(c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, protocol.NewTerritoryState(t))
}

func (s *Server) handleTerritoryAt(c *gin.Context) {
	var pos game.Vector3
	for _, axis := range []struct {
		name string
		dst  *float64
	}{{"x", &pos.X}, {"y", &pos.Y}, {"z", &pos.Z}} {
		raw := c.DefaultQuery(axis.name, "0")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			apiError(c, errInvalidPayload)
			return
		}
		*axis.dst = v
	}

	t, ok := s.reg.GetTerritoryByPosition(pos)
	if !ok {
		apiError(c, errNoTerritoryAt)
		return
	}
	c.JSON(http.StatusOK, protocol.NewTerritoryState(t))
}

func (s *Server) handleCreateTerritory(c *gin.Context) {
	var payload protocol.CreateTerritoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		apiError(c, errInvalidPayload)
		return
	}

	t, err := s.reg.CreateTerritory(payload.TerritoryID, payload.Position, payload.Type)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, protocol.NewTerritoryState(t))
}

func (s *Server) handleReportUnits(c *gin.Context) {
	id := c.Param("id")
	var payload protocol.ReportUnitsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		apiError(c, errInvalidPayload)
		return
	}
	if _, ok := s.reg.GetTerritory(id); !ok {
		apiError(c, unknownTerritory(id))
		return
	}

	s.roster.ReportFrom(id, httpSource, payload.Units)
	c.JSON(http.StatusAccepted, gin.H{"territory_id": id, "units": len(payload.Units)})
}

func (s *Server) handleTerritoryHistory(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, protocol.ErrorPayload{
			Code:    protocol.ErrCodeInternalError,
			Message: errNoDatabase.Error(),
		})
		return
	}
	id := c.Param("id")
	if _, ok := s.reg.GetTerritory(id); !ok {
		apiError(c, unknownTerritory(id))
		return
	}

	records, err := s.db.GetTerritoryHistory(s.cfg.MatchID, id)
	if err != nil {
		s.logger.Printf("History query for %s failed: %v", id, err)
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"territory_id": id, "captures": records})
}

func (s *Server) handleLedgerTotals(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, protocol.ErrorPayload{
			Code:    protocol.ErrCodeInternalError,
			Message: errNoDatabase.Error(),
		})
		return
	}

	totals, err := s.db.LedgerTotals(s.cfg.MatchID)
	if err != nil {
		s.logger.Printf("Ledger query failed: %v", err)
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match_id": s.cfg.MatchID, "totals": totals})
}
