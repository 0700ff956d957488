// Package httpapi wires the identity and secret-management core's gin
// routes (spec §6) to the collaborators built by internal/infrastructure/wire.
// Grounded on the teacher's internal/api/handlers package shape (one
// receiver struct per resource, ShouldBindJSON request structs, gin.H
// responses) adapted from zap to this module's apperror/slog conventions.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/insforge/core/internal/apperror"
	"github.com/insforge/core/internal/audit"
	"github.com/insforge/core/internal/auth"
	"github.com/insforge/core/internal/infrastructure/wire"
	"github.com/insforge/core/internal/oauth"
	"github.com/insforge/core/internal/secret"
	"github.com/insforge/core/internal/session"
	"github.com/insforge/core/internal/shared/middleware"
	"github.com/insforge/core/internal/shared/utils/httpauth"
)

// Handlers bundles every collaborator the route table needs.
type Handlers struct {
	app *wire.App
}

func New(app *wire.App) *Handlers {
	return &Handlers{app: app}
}

type credentialsRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"name"`
}

func userResponse(u *auth.User, token string) gin.H {
	return gin.H{
		"user": gin.H{
			"id":    u.ID,
			"email": u.Email,
			"name":  u.DisplayName,
		},
		"token": token,
	}
}

// RegisterUser handles POST /auth/users.
func (h *Handlers) RegisterUser(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RenderError(c, apperror.New(apperror.InvalidInput, "email and password are required"))
		return
	}
	u, err := h.app.Auth.RegisterUser(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	token, err := h.app.Session.Issue(c.Request.Context(), u.ID, u.Email, session.RoleAuthenticated, session.TypeUser)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(u, token))
}

// IssueUserSession handles POST /auth/sessions.
func (h *Handlers) IssueUserSession(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RenderError(c, apperror.New(apperror.InvalidInput, "email and password are required"))
		return
	}
	u, err := h.app.Auth.VerifyUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	token, err := h.app.Session.Issue(c.Request.Context(), u.ID, u.Email, session.RoleAuthenticated, session.TypeUser)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(u, token))
}

// RegisterAdmin handles POST /admin/register.
func (h *Handlers) RegisterAdmin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RenderError(c, apperror.New(apperror.InvalidInput, "email and password are required"))
		return
	}
	a, err := h.app.Auth.RegisterAdmin(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": gin.H{"id": a.ID, "email": a.Email, "name": a.DisplayName}})
}

// SignInAdmin handles POST /admin/sign-in.
func (h *Handlers) SignInAdmin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RenderError(c, apperror.New(apperror.InvalidInput, "email and password are required"))
		return
	}
	a, err := h.app.Auth.VerifyAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	token, err := h.app.Session.Issue(c.Request.Context(), a.ID, a.Email, session.RoleProjectAdmin, session.TypeAdmin)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": gin.H{"id": a.ID, "email": a.Email, "name": a.DisplayName}, "token": token})
}

// Me handles GET /me.
func (h *Handlers) Me(c *gin.Context) {
	bearer := httpauth.TrimBearerPrefix(c.GetHeader("Authorization"))
	payload, err := h.app.Session.Me(c.Request.Context(), bearer)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sub":   payload.Subject,
		"email": payload.Email,
		"role":  payload.Role,
		"type":  payload.Type,
	})
}

// ListUsers handles GET /admin/users.
func (h *Handlers) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	users, err := h.app.Auth.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{"id": u.ID, "email": u.Email, "name": u.DisplayName, "createdAt": u.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// BulkDeleteUsers handles DELETE /admin/users/bulk-delete.
func (h *Handlers) BulkDeleteUsers(c *gin.Context) {
	var req struct {
		UserIDs []string `json:"userIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RenderError(c, apperror.New(apperror.InvalidInput, "userIds is required"))
		return
	}
	identity, _ := middleware.Identity(c)
	deleted, err := h.app.Auth.BulkDeleteUsers(c.Request.Context(), identity.Email, req.UserIDs)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// BeginOAuth handles GET /auth/oauth/:provider.
func (h *Handlers) BeginOAuth(c *gin.Context) {
	if h.app.OAuth == nil {
		middleware.RenderError(c, apperror.New(apperror.NotFound, "oauth is not configured"))
		return
	}
	provider := c.Param("provider")
	redirectURI := c.Query("redirect_uri")
	authURL, err := h.app.OAuth.BeginAuthorization(c.Request.Context(), provider, redirectURI)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authUrl": authURL.URL})
}

// CompleteOAuth handles GET /auth/oauth/:provider/callback.
func (h *Handlers) CompleteOAuth(c *gin.Context) {
	if h.app.OAuth == nil {
		middleware.RenderError(c, apperror.New(apperror.NotFound, "oauth is not configured"))
		return
	}
	provider := c.Param("provider")
	code := c.Query("code")
	state := c.Query("state")
	identity, err := h.app.OAuth.CompleteAuthorization(c.Request.Context(), provider, code, state)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	token, err := h.app.Session.Issue(c.Request.Context(), identity.UserID, identity.Email, session.RoleAuthenticated, session.TypeUser)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": token})
}

type updateOAuthConfigRequest struct {
	Enabled              bool   `json:"enabled"`
	ClientID             string `json:"clientId"`
	ClientSecret         string `json:"clientSecret"`
	RedirectURI          string `json:"redirectUri"`
	UseSharedCredentials bool   `json:"useSharedKeys"`
}

// UpdateOAuthConfig handles PUT /auth/oauth/:provider. clientSecret may
// be "****" to keep the previously stored secret unchanged (spec §4.4
// point 3).
func (h *Handlers) UpdateOAuthConfig(c *gin.Context) {
	if h.app.OAuth == nil {
		middleware.RenderError(c, apperror.New(apperror.NotFound, "oauth is not configured"))
		return
	}
	var req updateOAuthConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RenderError(c, apperror.New(apperror.InvalidInput, "invalid body"))
		return
	}
	update := oauth.ProviderConfig{
		Provider:             c.Param("provider"),
		Enabled:              req.Enabled,
		ClientID:             req.ClientID,
		ClientSecret:         req.ClientSecret,
		RedirectURI:          req.RedirectURI,
		UseSharedCredentials: req.UseSharedCredentials,
	}
	if err := h.app.OAuth.UpdateConfig(c.Request.Context(), update); err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// ReloadOAuth handles POST /auth/oauth/reload.
func (h *Handlers) ReloadOAuth(c *gin.Context) {
	if h.app.OAuth == nil {
		middleware.RenderError(c, apperror.New(apperror.NotFound, "oauth is not configured"))
		return
	}
	if err := h.app.OAuth.Reload(c.Request.Context()); err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reloaded": true})
}

type createSecretRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// CreateSecret handles POST /secrets.
func (h *Handlers) CreateSecret(c *gin.Context) {
	var req createSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RenderError(c, apperror.New(apperror.InvalidInput, "name and value are required"))
		return
	}
	id, err := h.app.Secrets.Create(c.Request.Context(), req.Name, req.Value, secret.CreateOptions{})
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// ListSecrets handles GET /secrets.
func (h *Handlers) ListSecrets(c *gin.Context) {
	summaries, err := h.app.Secrets.List(c.Request.Context())
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"secrets": summaries})
}

// UpdateSecret handles PATCH /secrets/:id.
func (h *Handlers) UpdateSecret(c *gin.Context) {
	var req struct {
		Value    *string `json:"value"`
		IsActive *bool   `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RenderError(c, apperror.New(apperror.InvalidInput, "invalid body"))
		return
	}
	patch := secret.UpdatePatch{Plaintext: req.Value, IsActive: req.IsActive}
	if err := h.app.Secrets.Update(c.Request.Context(), c.Param("id"), patch); err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// RotateSecret handles POST /secrets/:id/rotate.
func (h *Handlers) RotateSecret(c *gin.Context) {
	var req struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RenderError(c, apperror.New(apperror.InvalidInput, "value is required"))
		return
	}
	id, err := h.app.Secrets.Rotate(c.Request.Context(), c.Param("id"), req.Value)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// QueryAudit handles GET /admin/audit.
func (h *Handlers) QueryAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	filter := audit.Filter{
		Actor:  c.Query("actor"),
		Action: c.Query("action"),
		Module: c.Query("module"),
		Limit:  limit,
		Offset: offset,
	}
	records, err := h.app.Audit.Query(c.Request.Context(), filter)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

