// Package handlers exposes the ledger over HTTP: JSON CRUD, the
// spreadsheet upload, an SSE feed of live snapshots, and Prometheus
// metrics.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lotocontrol/internal/calculator"
	"lotocontrol/internal/importer"
	"lotocontrol/internal/ledgerview"
	"lotocontrol/internal/models"
	"lotocontrol/internal/service"
	"lotocontrol/internal/storage"
	"lotocontrol/pkg/money"
)

// HTTPHandler holds the dependencies for the HTTP handlers.
type HTTPHandler struct {
	service *service.LedgerService
	view    *ledgerview.View
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(service *service.LedgerService, view *ledgerview.View) *HTTPHandler {
	return &HTTPHandler{service: service, view: view}
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/clients", h.ListClients)
	router.POST("/clients", h.AddClient)
	router.GET("/clients/:id", h.GetClient)
	router.PUT("/clients/:id", h.UpdateClient)
	router.DELETE("/clients/:id", h.DeleteClient)
	router.POST("/clients/:id/entries", h.RecordEntry)
	router.POST("/clients/:id/carryover", h.CarryOverDebt)

	router.GET("/settings", h.GetSettings)
	router.PUT("/settings", h.UpdateSettings)

	router.GET("/summary", h.Summary)
	router.POST("/import", h.ImportSpreadsheet)
	router.GET("/live", h.StreamLedger)
}

// writeError maps service errors to HTTP statuses. Not-found and bad
// input are client errors; everything else is a 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidRecord),
		errors.Is(err, importer.ErrFormat),
		errors.Is(err, importer.ErrParse),
		errors.Is(err, importer.ErrIO):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// Health reports liveness.
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListClients returns all clients with their balances; ?q= filters by
// name prefix.
func (h *HTTPHandler) ListClients(c *gin.Context) {
	clients, err := h.service.ListClients(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	settings, err := h.service.GetSettings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": calculator.WithBalances(clients, settings)})
}

type addClientRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddClient creates a client from a name.
func (h *HTTPHandler) AddClient(c *gin.Context) {
	var req addClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.service.AddClient(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClient returns one client with its balance under the active
// settings.
func (h *HTTPHandler) GetClient(c *gin.Context) {
	client, err := h.service.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	settings, err := h.service.GetSettings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	balances := calculator.WithBalances([]models.Client{*client}, settings)
	c.JSON(http.StatusOK, balances[0])
}

type updateClientRequest struct {
	Name             string  `json:"name" binding:"required"`
	TicketsDelivered int     `json:"ticketsDelivered"`
	TicketsReturned  int     `json:"ticketsReturned"`
	AmountPaid       float64 `json:"amountPaid"`
	PreviousDebt     float64 `json:"previousDebt"`
}

// UpdateClient replaces a client's fields wholesale.
func (h *HTTPHandler) UpdateClient(c *gin.Context) {
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client := models.Client{
		ID:               c.Param("id"),
		Name:             req.Name,
		TicketsDelivered: req.TicketsDelivered,
		TicketsReturned:  req.TicketsReturned,
		AmountPaid:       req.AmountPaid,
		PreviousDebt:     req.PreviousDebt,
	}
	if err := h.service.UpdateClient(c.Request.Context(), &client); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient removes a client.
func (h *HTTPHandler) DeleteClient(c *gin.Context) {
	if err := h.service.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type entryRequest struct {
	TicketsReturned int     `json:"ticketsReturned"`
	AmountPaid      float64 `json:"amountPaid"`
}

// RecordEntry saves a settlement entry: returned count and a payment
// that accumulates.
func (h *HTTPHandler) RecordEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.service.RecordEntry(c.Request.Context(), c.Param("id"), req.TicketsReturned, req.AmountPaid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// CarryOverDebt rolls a client's positive balance into previousDebt
// and resets the per-draw counters.
func (h *HTTPHandler) CarryOverDebt(c *gin.Context) {
	client, err := h.service.CarryOverDebt(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

type settingsResponse struct {
	DrawDate    string  `json:"drawDate"`
	TicketPrice float64 `json:"ticketPrice"`
}

// GetSettings returns the active draw settings, 404 when no draw is
// configured yet.
func (h *HTTPHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.GetSettings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if settings == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no draw configured"})
		return
	}
	c.JSON(http.StatusOK, settingsResponse{
		DrawDate:    settings.DrawDate.Format(models.DateFormat),
		TicketPrice: settings.TicketPrice,
	})
}

type settingsRequest struct {
	DrawDate    string  `json:"drawDate" binding:"required"`
	TicketPrice float64 `json:"ticketPrice"`
}

// UpdateSettings replaces the active draw settings.
func (h *HTTPHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	drawDate, err := time.Parse(models.DateFormat, req.DrawDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "drawDate must be YYYY-MM-DD"})
		return
	}
	settings := models.LotterySettings{DrawDate: drawDate, TicketPrice: req.TicketPrice}
	if err := h.service.UpdateSettings(c.Request.Context(), settings); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settingsResponse{DrawDate: req.DrawDate, TicketPrice: settings.TicketPrice})
}

type summaryClient struct {
	Name           string  `json:"name"`
	Balance        float64 `json:"balance"`
	BalanceDisplay string  `json:"balanceDisplay"`
	HasDebt        bool    `json:"hasDebt"`
}

type summaryResponse struct {
	Clients             []summaryClient `json:"clients"`
	TotalPending        float64         `json:"totalPending"`
	TotalPendingDisplay string          `json:"totalPendingDisplay"`
	ClientsWithDebt     int             `json:"clientsWithDebt"`
	ClientsWithoutDebt  int             `json:"clientsWithoutDebt"`
}

// Summary returns the aggregate ledger view, debtors first, with
// euro-formatted display amounts.
func (h *HTTPHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	resp := summaryResponse{
		Clients:             make([]summaryClient, len(summary.Clients)),
		TotalPending:        summary.TotalPending,
		TotalPendingDisplay: money.Format(summary.TotalPending),
		ClientsWithDebt:     summary.ClientsWithDebt,
		ClientsWithoutDebt:  summary.ClientsWithoutDebt,
	}
	for i, cb := range summary.Clients {
		resp.Clients[i] = summaryClient{
			Name:           cb.Client.Name,
			Balance:        cb.Balance,
			BalanceDisplay: money.Format(cb.Balance),
			HasDebt:        cb.HasDebt,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ImportSpreadsheet accepts a multipart upload ("file") with an xlsx
// workbook and applies it as one batch.
func (h *HTTPHandler) ImportSpreadsheet(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload: " + err.Error()})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open upload: " + err.Error()})
		return
	}
	defer file.Close()

	result, err := h.service.ImportSpreadsheet(c.Request.Context(), file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"clientsImported": len(result.Clients),
		"drawDate":        result.Settings.DrawDate.Format(models.DateFormat),
		"ticketPrice":     result.Settings.TicketPrice,
	})
}

// StreamLedger sends live ledger snapshots as server-sent events; a
// new event is pushed whenever the client list or the settings change.
func (h *HTTPHandler) StreamLedger(c *gin.Context) {
	c.Writer.Header().Set("Cache-Control", "no-cache")
	ch := h.view.Subscribe(c.Request.Context())
	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snap)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
