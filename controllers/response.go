package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yunshui/materials-api/services"
	"github.com/yunshui/materials-api/utils"
)

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondFailure(c *gin.Context, status int, code, message string, details interface{}) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondError maps a service error to its HTTP status and error code
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var uploadErr *utils.FileUploadError
	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrMaterialNotFound):
		respondFailure(c, http.StatusNotFound, "MATERIAL_NOT_FOUND", "Material not found", nil)
	case errors.Is(err, services.ErrOrderNotFound):
		respondFailure(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	case errors.Is(err, services.ErrProjectNotFound):
		respondFailure(c, http.StatusNotFound, "PROJECT_NOT_FOUND", "Project not found", nil)
	case errors.Is(err, services.ErrWrongMaterialType):
		respondFailure(c, http.StatusBadRequest, "WRONG_MATERIAL_TYPE", "Material type does not match the order type", err.Error())
	case errors.Is(err, services.ErrDuplicateProjectName):
		respondFailure(c, http.StatusConflict, "DUPLICATE_PROJECT_NAME", "A project with this name already exists", nil)
	case errors.Is(err, services.ErrInvalidStatus):
		respondFailure(c, http.StatusBadRequest, "INVALID_STATUS", "Invalid order status", err.Error())
	case errors.As(err, &uploadErr):
		respondFailure(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message, nil)
	case errors.As(err, &validationErr):
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", validationErr.Fields)
	case errors.Is(err, services.ErrInvalidInput):
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", err.Error())
	default:
		respondFailure(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil)
	}
}

// respondBindError reports a malformed request body
func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", err.Error())
}

func respondUnauthorized(c *gin.Context) {
	respondFailure(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information", nil)
}

func respondForbidden(c *gin.Context, message string) {
	respondFailure(c, http.StatusForbidden, "FORBIDDEN", message, nil)
}

// paramID parses a positive numeric path parameter, answering 400 when it is not one
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondFailure(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

// queryInt parses an optional integer query parameter
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		respondFailure(c, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid "+name+" parameter", nil)
		return 0, false
	}
	return v, true
}
