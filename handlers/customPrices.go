package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tallersur/presupuestos_backend/models"
)

func ListCustomPrices(c *gin.Context) {
	clientId, ok := idParam(c, "id")
	if !ok {
		return
	}
	customPrices, err := models.GetCustomPricesForClient(c.Request.Context(), clientId)
	if err != nil {
		respondError(c, "customPrices.go", "ListCustomPrices", err)
		return
	}
	c.JSON(http.StatusOK, customPrices)
}

func CreateCustomPrice(c *gin.Context) {
	clientId, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input models.NewCustomPrice
	if !bindJSON(c, &input) {
		return
	}
	customPrice, err := models.CreateCustomPrice(c.Request.Context(), clientId, &input)
	if err != nil {
		respondError(c, "customPrices.go", "CreateCustomPrice", err)
		return
	}
	c.JSON(http.StatusCreated, customPrice)
}

type customPriceChanges struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

func UpdateCustomPrice(c *gin.Context) {
	clientId, ok := idParam(c, "id")
	if !ok {
		return
	}
	customPriceId, ok := idParam(c, "customPriceId")
	if !ok {
		return
	}
	var input customPriceChanges
	if !bindJSON(c, &input) {
		return
	}
	customPrice, err := models.UpdateCustomPrice(c.Request.Context(), clientId, customPriceId, input.Price)
	if err != nil {
		respondError(c, "customPrices.go", "UpdateCustomPrice", err)
		return
	}
	c.JSON(http.StatusOK, customPrice)
}

func DeleteCustomPrice(c *gin.Context) {
	clientId, ok := idParam(c, "id")
	if !ok {
		return
	}
	customPriceId, ok := idParam(c, "customPriceId")
	if !ok {
		return
	}
	customPrice, err := models.DeleteCustomPrice(c.Request.Context(), clientId, customPriceId)
	if err != nil {
		respondError(c, "customPrices.go", "DeleteCustomPrice", err)
		return
	}
	c.JSON(http.StatusOK, customPrice)
}
