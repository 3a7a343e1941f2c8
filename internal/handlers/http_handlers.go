package handlers

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"prizewheel/internal/inventory"
	"prizewheel/internal/models"
	"prizewheel/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

const defaultCookieName = "vhu_admin_session"

// HTTPHandler holds the dependencies for the HTTP handlers, like the wheel service.
type HTTPHandler struct {
	service    *services.WheelService
	cookieName string
	metrics    http.Handler
}

// NewHTTPHandler creates a new HTTPHandler. metrics may be nil.
func NewHTTPHandler(service *services.WheelService, cookieName string, metrics http.Handler) *HTTPHandler {
	if cookieName == "" {
		cookieName = defaultCookieName
	}
	return &HTTPHandler{
		service:    service,
		cookieName: cookieName,
		metrics:    metrics,
	}
}

// SpinResponse answers a spin request. Accepted is false when a spin was
// already in flight and the request was ignored.
type SpinResponse struct {
	Accepted bool                 `json:"accepted"`
	Spin     *services.SpinTicket `json:"spin,omitempty"`
}

type loginRequest struct {
	Passphrase string `json:"passphrase" form:"passphrase"`
}

type specialRequest struct {
	Special *bool `json:"special"`
}

// RegisterPublicRoutes registers the routes the wheel widget uses.
func (h *HTTPHandler) RegisterPublicRoutes(router gin.IRouter) {
	router.GET("/healthz", h.Health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	api := router.Group("/api")
	api.GET("/wheel", h.ShowWheel)
	api.POST("/spin", h.PerformSpin)
	api.GET("/results", h.ListResults)
	api.GET("/results.csv", h.ExportResultsCSV)
	api.POST("/admin/login", h.Login)
}

// RegisterAdminRoutes registers the prize editor routes. The group must use
// AdminMiddleware.
func (h *HTTPHandler) RegisterAdminRoutes(admin gin.IRouter) {
	admin.GET("/prizes", h.ListPrizes)
	admin.PUT("/prizes", h.ReplacePrizes)
	admin.POST("/prizes", h.AddPrize)
	admin.POST("/prizes/import", h.UploadPrizesCSV)
	admin.PATCH("/prizes/:id", h.UpdatePrize)
	admin.DELETE("/prizes/:id", h.DeletePrize)
	admin.POST("/prizes/:id/special", h.SetSpecial)
	admin.POST("/reset", h.ResetPrizes)
	admin.POST("/logout", h.Logout)
}

// AdminMiddleware rejects requests without a live admin session cookie.
func (h *HTTPHandler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(h.cookieName)
		if err != nil || !h.service.Authorized(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin login required"})
			return
		}
		c.Set("adminToken", token)
		c.Next()
	}
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ShowWheel returns the active segments and the wheel's position.
func (h *HTTPHandler) ShowWheel(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.State())
}

// PerformSpin handles the request to spin the wheel.
func (h *HTTPHandler) PerformSpin(c *gin.Context) {
	ticket, err := h.service.Spin(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SpinResponse{Accepted: ticket != nil, Spin: ticket})
}

func (h *HTTPHandler) ListResults(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Results())
}

// ExportResultsCSV handles the request to download the spin history as a CSV file.
func (h *HTTPHandler) ExportResultsCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=spin_results.csv")

	// Add BOM to ensure UTF-8 compatibility in Excel
	c.Writer.Write([]byte("\xef\xbb\xbf"))

	w := csv.NewWriter(c.Writer)

	if err := w.Write([]string{"Spin ID", "Prize ID", "Prize", "Win", "Special", "Finished At"}); err != nil {
		logger.Infof("Error writing CSV header: %v", err)
		c.String(http.StatusInternalServerError, "Error writing CSV")
		return
	}

	for _, result := range h.service.Results() {
		row := []string{
			result.SpinID,
			result.PrizeID,
			result.Label,
			strconv.FormatBool(result.IsWin),
			strconv.FormatBool(result.IsSpecial),
			result.FinishedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			logger.Infof("Error writing CSV row: %v", err)
			c.String(http.StatusInternalServerError, "Error writing CSV")
			return
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		logger.Infof("Error flushing CSV writer: %v", err)
		c.String(http.StatusInternalServerError, "Error writing CSV")
	}
}

// Login checks the admin passphrase and opens a browser-session cookie.
func (h *HTTPHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	token, err := h.service.Login(req.Passphrase)
	if errors.Is(err, services.ErrWrongPassphrase) {
		logger.Infof("rejected admin login from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect passphrase, please try again."})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	// No max-age: the browser drops the cookie when the session ends.
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookieName, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

func (h *HTTPHandler) Logout(c *gin.Context) {
	h.service.Logout(c.GetString("adminToken"))
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// ListPrizes returns every prize, sold-out entries included.
func (h *HTTPHandler) ListPrizes(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Prizes())
}

// ReplacePrizes saves the whole edited list at once.
func (h *HTTPHandler) ReplacePrizes(c *gin.Context) {
	var prizes []models.Prize
	if err := c.ShouldBindJSON(&prizes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prize list"})
		return
	}
	if err := h.service.ReplacePrizes(c.Request.Context(), prizes); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.Prizes())
}

// AddPrize handles the submission of a new prize.
func (h *HTTPHandler) AddPrize(c *gin.Context) {
	var in services.PrizeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prize"})
		return
	}
	if strings.TrimSpace(in.Label) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prize label cannot be empty"})
		return
	}

	added, err := h.service.AddPrizes(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, added[0])
}

// UploadPrizesCSV handles the CSV upload for prizes. Each row is
// label,icon,color,colorEnd,isWin,quantity; malformed rows are skipped.
func (h *HTTPHandler) UploadPrizesCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("prizeCSV")
	if err != nil {
		c.String(http.StatusBadRequest, "Error retrieving file: %v", err)
		return
	}
	defer file.Close()

	var inputs []services.PrizeInput
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.String(http.StatusBadRequest, "Error reading CSV: %v", err)
			return
		}

		if len(record) != 6 {
			logger.Infof("Skipping malformed CSV record: %v", record)
			continue // Skip malformed rows
		}

		isWin, err := strconv.ParseBool(strings.TrimSpace(record[4]))
		if err != nil {
			logger.Infof("Skipping CSV record with invalid isWin: %v", record)
			continue // Skip rows with invalid isWin
		}
		quantity, err := strconv.Atoi(strings.TrimSpace(record[5]))
		if err != nil || quantity < 0 {
			logger.Infof("Skipping CSV record with invalid quantity: %v", record)
			continue // Skip rows with invalid quantity
		}

		inputs = append(inputs, services.PrizeInput{
			Label:    strings.TrimSpace(record[0]),
			Icon:     strings.TrimSpace(record[1]),
			Color:    strings.TrimSpace(record[2]),
			ColorEnd: strings.TrimSpace(record[3]),
			IsWin:    isWin,
			Quantity: quantity,
		})
	}

	if len(inputs) == 0 {
		c.String(http.StatusBadRequest, "No valid prize rows found")
		return
	}

	added, err := h.service.AddPrizes(c.Request.Context(), inputs...)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

// UpdatePrize applies a partial edit to one prize.
func (h *HTTPHandler) UpdatePrize(c *gin.Context) {
	var patch services.PrizePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prize update"})
		return
	}
	prize, err := h.service.UpdatePrize(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prize)
}

func (h *HTTPHandler) DeletePrize(c *gin.Context) {
	if err := h.service.RemovePrize(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetSpecial flags a prize as the special one. An empty body means true.
func (h *HTTPHandler) SetSpecial(c *gin.Context) {
	var req specialRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}
	special := req.Special == nil || *req.Special

	if err := h.service.SetSpecial(c.Request.Context(), c.Param("id"), special); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.Prizes())
}

// ResetPrizes restores the default prize list and quantities.
func (h *HTTPHandler) ResetPrizes(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ResetToDefaults(c.Request.Context()))
}

func (h *HTTPHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, inventory.ErrPrizeNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSoldOut):
		return http.StatusConflict
	case errors.Is(err, services.ErrPrizeLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, inventory.ErrDuplicateID),
		errors.Is(err, inventory.ErrEmptyID),
		errors.Is(err, inventory.ErrNegativeStock),
		errors.Is(err, inventory.ErrMultipleSpecial):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
