package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"maintenance-checklist-backend/internal/auth"
	"maintenance-checklist-backend/internal/model"
	"maintenance-checklist-backend/internal/mw"
	"maintenance-checklist-backend/internal/store"
)

type registerRequest struct {
	FirstName      string `json:"firstName" binding:"required"`
	LastName       string `json:"lastName"`
	CompanyName    string `json:"companyName" binding:"required"`
	CompanyAddress string `json:"companyAddress"`
	Email          string `json:"email" binding:"required,email"`
	Contact        string `json:"contact"`
	Password       string `json:"password" binding:"required,min=8"`
}

// Register creates an organization with its first department and admin
// user in one transaction.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := h.store.RoleByName(c.Request.Context(), "Admin")
	if err != nil {
		abortStoreError(c, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	org := &model.Organization{ID: uuid.NewString(), Name: req.CompanyName, Address: req.CompanyAddress}
	dept := &model.Department{Name: h.defaultDept.Name}
	admin := &model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Contact:      req.Contact,
		Designation:  "Admin",
		PasswordHash: hash,
		RoleID:       role.ID,
	}

	if err := h.store.RegisterOrganization(c.Request.Context(), org, dept, admin); err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"organizationId": org.ID, "userId": admin.ID})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.UserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User does not exist"})
			return
		}
		abortStoreError(c, err)
		return
	}

	if user.Blocked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User is blocked"})
		return
	}
	if !user.Verified {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User is not verified"})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.tokens.IssueToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ForgotPassword issues a reset token for the user. Delivery is the
// mail collaborator's job; the token is only persisted here.
func (h *Handler) ForgotPassword(c *gin.Context) {
	h.issueResetToken(c, "Reset token issued")
}

// ResendForgotPassword re-issues the reset token. SaveResetToken
// replaces any earlier tokens, so the previous one stops working.
func (h *Handler) ResendForgotPassword(c *gin.Context) {
	h.issueResetToken(c, "Reset token re-issued")
}

func (h *Handler) issueResetToken(c *gin.Context, message string) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.UserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	token, err := h.tokens.IssueToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if err := h.store.SaveResetToken(c.Request.Context(), user.ID, token); err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// ResetPassword consumes a reset token and sets the new password.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := h.store.ConsumeResetToken(c.Request.Context(), req.Token, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid token"})
			return
		}
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// CurrentUser returns the authenticated user's profile.
func (h *Handler) CurrentUser(c *gin.Context) {
	userID := c.GetString(mw.UserIDKey)
	user, err := h.store.UserByID(c.Request.Context(), userID)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
