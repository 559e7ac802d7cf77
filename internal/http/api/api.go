package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medrota/shiftswap/internal/apperr"
	"github.com/medrota/shiftswap/internal/http/middleware"
	"github.com/medrota/shiftswap/internal/model"
)

type APIError struct {
	Code    int
	Message string
}

// ServiceError translates the service error taxonomy into a response code.
func ServiceError(err error) *APIError {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return &APIError{Code: http.StatusBadRequest, Message: err.Error()}
	case apperr.KindNotFound:
		return &APIError{Code: http.StatusNotFound, Message: err.Error()}
	case apperr.KindForbidden:
		return &APIError{Code: http.StatusForbidden, Message: err.Error()}
	case apperr.KindConflict:
		return &APIError{Code: http.StatusConflict, Message: err.Error()}
	}
	return &APIError{Code: http.StatusInternalServerError, Message: "internal error"}
}

type HandlerFuncWithAuth func(ctx *gin.Context, user *model.User) (any, *APIError)
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

func ResolveEndpointWithAuth(h HandlerFuncWithAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := middleware.GetCurrentUser(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, user)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}

// Controller wraps a gin group so modules can register typed handlers.
type Controller struct {
	Group *gin.RouterGroup
}

func (c *Controller) GET(path string, h HandlerFuncWithAuth) {
	c.Group.GET(path, ResolveEndpointWithAuth(h))
}

func (c *Controller) POST(path string, h HandlerFuncWithAuth) {
	c.Group.POST(path, ResolveEndpointWithAuth(h))
}

func (c *Controller) PUT(path string, h HandlerFuncWithAuth) {
	c.Group.PUT(path, ResolveEndpointWithAuth(h))
}

func (c *Controller) DELETE(path string, h HandlerFuncWithAuth) {
	c.Group.DELETE(path, ResolveEndpointWithAuth(h))
}

func (c *Controller) PUBLIC_POST(path string, h HandlerFunc) {
	c.Group.POST(path, ResolveEndpoint(h))
}
