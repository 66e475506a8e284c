package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/tallersur/presupuestos_backend/config"
	"github.com/tallersur/presupuestos_backend/utils"
)

// bindJSON binds and validates the request body, answering 422 with a
// per-field error map on validation failure.
func bindJSON(c *gin.Context, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": utils.ProcessValidationErrors(err)})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return false
	}
	return true
}

func idParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// respondError maps domain failures onto HTTP statuses: referential misses
// are 404, everything else from the models layer is a rejected business
// rule or validation problem, answered 422.
func respondError(c *gin.Context, module string, funcName string, err error) {
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	config.LogError(config.GetLogger(), module, funcName, "models", nil, err)
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}
