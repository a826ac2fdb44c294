package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/abzalbek/gigdesk-ledger/internal/http/middleware"
	"github.com/abzalbek/gigdesk-ledger/internal/model"
	"github.com/abzalbek/gigdesk-ledger/internal/service"
)

type Handler struct {
	ledger   *service.LedgerService
	payments *service.PaymentService
	reports  *service.ReportService
	log      zerolog.Logger
}

func NewHandler(ledger *service.LedgerService, payments *service.PaymentService, reports *service.ReportService, log zerolog.Logger) *Handler {
	return &Handler{ledger: ledger, payments: payments, reports: reports, log: log}
}

func (h *Handler) Register(router *gin.Engine, profileMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(profileMiddleware)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/jobs/unpaid", h.listUnpaidJobs)
	protected.POST("/jobs/:job_id/pay", h.payJob)
	protected.POST("/balances/deposit/:user_id", h.deposit)

	admin := router.Group("/admin")
	admin.GET("/best-profession", h.bestProfession)
	admin.GET("/best-clients", h.bestClients)
	admin.GET("/users/:user_id", h.getUser)
	admin.GET("/reports/export", h.exportReport)
}

type partySummary struct {
	ID   uuid.UUID `json:"id"`
	Type string    `json:"type"`
}

type contractSummary struct {
	ID        uuid.UUID `json:"id"`
	Terms     string    `json:"terms"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type contractDetail struct {
	contractSummary
	Client     partySummary `json:"client"`
	Contractor partySummary `json:"contractor"`
}

type jobResponse struct {
	ID          uuid.UUID  `json:"id"`
	ContractID  uuid.UUID  `json:"contractId"`
	Description string     `json:"description"`
	Price       string     `json:"price"`
	PaymentDate *time.Time `json:"paymentDate"`
}

func (h *Handler) getContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}

	contract, err := h.ledger.GetContract(c.Request.Context(), principal, contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contract": contractDetail{
		contractSummary: toContractSummary(*contract),
		Client:          partySummary{ID: contract.ClientID, Type: string(model.ProfileTypeClient)},
		Contractor:      partySummary{ID: contract.ContractorID, Type: string(model.ProfileTypeContractor)},
	}})
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contracts, err := h.ledger.ListContracts(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	summaries := make([]contractSummary, 0, len(contracts))
	for _, contract := range contracts {
		summaries = append(summaries, toContractSummary(contract))
	}
	c.JSON(http.StatusOK, gin.H{"contracts": summaries})
}

func (h *Handler) listUnpaidJobs(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	jobs, err := h.ledger.ListUnpaidJobs(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	responses := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, jobResponse{
			ID:          job.ID,
			ContractID:  job.ContractID,
			Description: job.Description,
			Price:       job.Price.StringFixed(2),
			PaymentDate: job.PaymentDate,
		})
	}
	c.JSON(http.StatusOK, gin.H{"jobs": responses})
}

func (h *Handler) payJob(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	jobID, err := uuid.Parse(strings.TrimSpace(c.Param("job_id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	if err := h.payments.PayJob(c.Request.Context(), principal, jobID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "job payment processed successfully"})
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) deposit(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	targetID, err := uuid.Parse(strings.TrimSpace(c.Param("user_id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deposit payload"})
		return
	}

	newBalance, err := h.payments.Deposit(c.Request.Context(), principal, targetID, req.Amount)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "deposit successful",
		"newBalance": newBalance.StringFixed(2),
	})
}

func (h *Handler) bestProfession(c *gin.Context) {
	period, err := parsePeriod(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	best, err := h.reports.BestProfession(c.Request.Context(), period)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profession":     best.Profession,
		"total_earnings": best.Total.StringFixed(2),
	})
}

func (h *Handler) bestClients(c *gin.Context) {
	period, err := parsePeriod(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	clients, err := h.reports.BestClients(c.Request.Context(), period, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	responses := make([]gin.H, 0, len(clients))
	for _, client := range clients {
		responses = append(responses, gin.H{
			"id":         client.ID,
			"fullName":   client.FullName(),
			"total_paid": client.Total.StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, gin.H{"clients": responses})
}

func (h *Handler) getUser(c *gin.Context) {
	userID, err := uuid.Parse(strings.TrimSpace(c.Param("user_id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	profile, err := h.ledger.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        profile.ID,
		"firstName": profile.FirstName,
		"lastName":  profile.LastName,
		"balance":   profile.Balance.StringFixed(2),
	})
}

func (h *Handler) exportReport(c *gin.Context) {
	period, err := parsePeriod(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	format := service.ExportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "xlsx"))))

	result, err := h.reports.ExportPeriodReport(c.Request.Context(), period, limit, format)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrContractNotActive),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrDepositLimit):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toContractSummary(contract model.Contract) contractSummary {
	return contractSummary{
		ID:        contract.ID,
		Terms:     contract.Terms,
		Status:    string(contract.Status),
		CreatedAt: contract.CreatedAt,
		UpdatedAt: contract.UpdatedAt,
	}
}

func parsePeriod(c *gin.Context) (service.Period, error) {
	start, err := parseDate(c.Query("start"))
	if err != nil {
		return service.Period{}, err
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		return service.Period{}, err
	}
	return service.Period{Start: start, End: end}, nil
}

// parseDate accepts an empty value (zero time, defaults apply later),
// a plain date or RFC3339.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, service.ErrInvalidInput
	}
	return limit, nil
}
