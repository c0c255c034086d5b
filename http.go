package authflow

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// HTTPController exposes the orchestrator over go-router handlers. It is the
// thin outer surface; every decision stays in Auther.
type HTTPController struct {
	auth   Authenticator
	logger Logger
}

func NewHTTPController(auther Authenticator) *HTTPController {
	return &HTTPController{
		auth:   auther,
		logger: defLogger{},
	}
}

func (c *HTTPController) WithLogger(logger Logger) *HTTPController {
	c.logger = logger
	return c
}

// Login handles POST /login. Failure responses carry only the generic
// message; the specific cause lives in the incident trail.
func (c *HTTPController) Login(ctx router.Context) error {
	var req LoginRequest
	if err := ctx.Bind(&req); err != nil {
		c.logger.Error("Login payload bind error", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": "malformed login payload",
		})
	}

	if err := req.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": err.Error(),
		})
	}

	req.UserAgent = ctx.GetString("User-Agent", "")

	result, err := c.auth.Login(ctx.Context(), req)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"principal": map[string]any{
			"id":           result.Principal.ID(),
			"email":        result.Principal.Email(),
			"display_name": result.Principal.DisplayName(),
			"type":         result.Principal.Type(),
		},
		"tokens": result.Tokens,
	})
}

// Refresh handles POST /refresh with a JSON body {"refresh": "..."}.
func (c *HTTPController) Refresh(ctx router.Context) error {
	var payload struct {
		Refresh string `json:"refresh"`
	}
	if err := ctx.Bind(&payload); err != nil || payload.Refresh == "" {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": "malformed refresh payload",
		})
	}

	result, err := c.auth.Refresh(ctx.Context(), payload.Refresh)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"tokens": result.Tokens,
	})
}

// Logout handles POST /logout, revoking the session behind the bearer token.
func (c *HTTPController) Logout(ctx router.Context) error {
	raw := extractBearer(ctx.GetString(router.HeaderAuthorization, ""))
	if raw == "" {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": "missing bearer token",
		})
	}

	if err := c.auth.Logout(ctx.Context(), raw); err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.NoContent(router.StatusNoContent)
}

func (c *HTTPController) renderError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryAuth {
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"error": richErr.Message,
		})
	}

	c.logger.Error("authentication backend error", "error", err)
	return ctx.JSON(router.StatusInternalServerError, map[string]any{
		"error": "authentication unavailable",
	})
}

func extractBearer(header string) string {
	const scheme = "Bearer"
	if len(header) > len(scheme)+1 && strings.EqualFold(header[:len(scheme)], scheme) {
		return strings.TrimSpace(header[len(scheme):])
	}
	return ""
}
