package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"devmatch-service/internal/apperrors"
	"devmatch-service/internal/middleware"
	"devmatch-service/internal/models"
	"devmatch-service/internal/services"
	"devmatch-service/internal/telemetry"
)

const pictureField = "profilePicture"

// UserHandler serves discovery and profile endpoints.
type UserHandler struct {
	discovery *services.DiscoveryService
	profiles  *services.ProfileService
	audit     *telemetry.AuditEmitter
}

func NewUserHandler(discovery *services.DiscoveryService, profiles *services.ProfileService, audit *telemetry.AuditEmitter) *UserHandler {
	RegisterValidators()
	return &UserHandler{discovery: discovery, profiles: profiles, audit: audit}
}

// PotentialMatches returns the next candidates for the caller.
func (h *UserHandler) PotentialMatches(c *gin.Context) {
	filter, err := parseCandidateFilter(c)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	candidates, err := h.discovery.FindCandidates(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidates)
}

func parseCandidateFilter(c *gin.Context) (models.CandidateFilter, error) {
	var filter models.CandidateFilter
	var err error

	if filter.MinAge, err = ageParam(c, "minAge"); err != nil {
		return filter, err
	}
	if filter.MaxAge, err = ageParam(c, "maxAge"); err != nil {
		return filter, err
	}
	for _, skill := range strings.Split(c.Query("skills"), ",") {
		if skill = strings.TrimSpace(skill); skill != "" {
			filter.Skills = append(filter.Skills, skill)
		}
	}
	filter.ExperienceLevel = models.ExperienceLevel(strings.TrimSpace(c.Query("experienceLevel")))
	filter.Location = strings.TrimSpace(c.Query("location"))
	filter.LookingFor = models.Intent(strings.TrimSpace(c.Query("lookingFor")))
	return filter, nil
}

func ageParam(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation(fmt.Sprintf("%s must be a number", name))
	}
	return age, nil
}

// Me returns the caller's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.profiles.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile edits the caller's profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		middleware.WriteError(c, bindError(err))
		return
	}

	user, err := h.profiles.UpdateProfile(c.Request.Context(), middleware.UserID(c), update)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	audit(c, h.audit, "Profile updated")
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}

// UploadProfilePicture stores a new profile picture for the caller.
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxPictureSize+(1<<20))

	file, header, err := c.Request.FormFile(pictureField)
	if err != nil {
		middleware.WriteError(c, apperrors.Validation("No file uploaded"))
		return
	}
	defer file.Close()

	user, err := h.profiles.UploadProfilePicture(c.Request.Context(), middleware.UserID(c), services.Picture{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	audit(c, h.audit, "Profile picture uploaded")
	c.JSON(http.StatusOK, gin.H{
		"message":        "Profile picture uploaded successfully",
		"profilePicture": user.ProfilePicture,
		"user":           user,
	})
}

// UpdateOnlineStatus sets the caller's online flag manually.
func (h *UserHandler) UpdateOnlineStatus(c *gin.Context) {
	var req struct {
		IsOnline *bool `json:"isOnline" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, bindError(err))
		return
	}

	if err := h.profiles.SetOnlineStatus(c.Request.Context(), middleware.UserID(c), *req.IsOnline); err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}
