package handlers

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"real-estate-site/internal/auth"
	"real-estate-site/internal/cleanup"
	"real-estate-site/internal/editor"
	"real-estate-site/internal/ratelimit"
	"real-estate-site/internal/storage"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles the authenticated back-office requests
type AdminHandler struct {
	editor       *editor.Editor
	authService  *auth.Service
	cleanup      *cleanup.Service
	loginLimiter *ratelimit.RateLimiter
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(ed *editor.Editor, authService *auth.Service, cleanupService *cleanup.Service, limiter *ratelimit.RateLimiter) *AdminHandler {
	return &AdminHandler{
		editor:       ed,
		authService:  authService,
		cleanup:      cleanupService,
		loginLimiter: limiter,
	}
}

// Login authenticates an admin and opens a session
func (h *AdminHandler) Login(c *gin.Context) {
	if h.loginLimiter != nil && !h.loginLimiter.AllowRequest() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts, try again later"})
		return
	}

	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Authenticate(req.Username, req.Password)
	if err != nil {
		var blocked *auth.BlockedError
		switch {
		case errors.As(err, &blocked):
			c.JSON(http.StatusForbidden, gin.H{
				"error":            "account temporarily blocked",
				"retry_after_secs": int(time.Until(blocked.Until).Seconds()) + 1,
			})
		case errors.Is(err, auth.ErrPermanentlyBlocked):
			c.JSON(http.StatusForbidden, gin.H{"error": "account permanently blocked"})
		case errors.Is(err, auth.ErrBadCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":              "invalid username or password",
				"attempts_remaining": h.authService.AttemptsLeft(req.Username),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if err := auth.LoginSession(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": user.Username, "role": user.Role})
}

// Logout clears the admin session
func (h *AdminHandler) Logout(c *gin.Context) {
	if err := auth.LogoutSession(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// CreateProperty creates a property from a multipart submission
func (h *AdminHandler) CreateProperty(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form: " + err.Error()})
		return
	}

	sub := submissionFromForm(c)
	property, err := h.editor.Create(
		c.GetString("username"),
		sub,
		firstFile(form.File["main_image"]),
		form.File["gallery_images"],
	)
	if err != nil {
		respondEditorError(c, err)
		return
	}

	c.JSON(http.StatusCreated, property)
}

// UpdateProperty edits a property: scalars, optional new main image, new
// gallery uploads and gallery removals
func (h *AdminHandler) UpdateProperty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form: " + err.Error()})
		return
	}

	sub := submissionFromForm(c)
	property, err := h.editor.Update(
		c.GetString("username"),
		id,
		sub,
		firstFile(form.File["main_image"]),
		form.File["gallery_images"],
		form.Value["remove_images"],
	)
	if err != nil {
		respondEditorError(c, err)
		return
	}

	c.JSON(http.StatusOK, property)
}

// DeleteProperty deletes a property and its stored images
func (h *AdminHandler) DeleteProperty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	if err := h.editor.Delete(c.GetString("username"), id); err != nil {
		respondEditorError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "property deleted"})
}

// RemoveGalleryImage removes a single gallery image from a property
func (h *AdminHandler) RemoveGalleryImage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	var req struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.editor.RemoveGalleryImage(c.GetString("username"), id, req.Image); err != nil {
		respondEditorError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "gallery image removed"})
}

// RunSweep executes the orphan image sweep on demand
func (h *AdminHandler) RunSweep(c *gin.Context) {
	var req struct {
		GraceMinutes     int  `json:"grace_minutes"`
		MaxDeletionCount int  `json:"max_deletion_count"`
		DryRun           bool `json:"dry_run"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config := cleanup.DefaultSweepConfig()
	if req.GraceMinutes > 0 {
		config.GracePeriod = time.Duration(req.GraceMinutes) * time.Minute
	}
	if req.MaxDeletionCount > 0 {
		config.MaxDeletionCount = req.MaxDeletionCount
	}
	config.DryRun = req.DryRun

	log.Printf("Admin: running orphan sweep (grace: %s, max: %d, dry-run: %v)",
		config.GracePeriod, config.MaxDeletionCount, config.DryRun)

	result, err := h.cleanup.Sweep(config)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetDeleteLogs returns recent delete log entries
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 {
		limit = 100
	}

	logs, err := h.cleanup.GetRecentDeleteLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetStats returns back-office statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	properties, err := h.editor.ListProperties()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	galleryCount := 0
	for _, p := range properties {
		galleryCount += len(p.Gallery)
	}
	stats := gin.H{
		"properties": gin.H{
			"total":          len(properties),
			"gallery_images": galleryCount,
		},
	}

	if logs, err := h.cleanup.GetRecentDeleteLogs(1000); err == nil {
		last30 := 0
		cutoff := time.Now().AddDate(0, 0, -30)
		for _, l := range logs {
			if l.DeletedAt.After(cutoff) {
				last30++
			}
		}
		stats["deletions"] = gin.H{
			"recorded":     len(logs),
			"last_30_days": last30,
		}
	}

	c.JSON(http.StatusOK, stats)
}

// firstFile returns the first upload under a form field, or nil
func firstFile(files []*multipart.FileHeader) *multipart.FileHeader {
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func submissionFromForm(c *gin.Context) editor.Submission {
	return editor.Submission{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Location:    c.PostForm("location"),
		Price:       c.PostForm("price"),
	}
}

func respondEditorError(c *gin.Context, err error) {
	var validation *editor.ValidationError
	var storageErr *storage.Error
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": validation.Fields,
		})
	case errors.Is(err, editor.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
	case errors.As(err, &storageErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "image storage failure: " + storageErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
