package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tallersur/presupuestos_backend/models"
)

func ListPayments(c *gin.Context) {
	var clientId, quoteId *int
	if n, err := strconv.Atoi(c.Query("client_id")); err == nil {
		clientId = &n
	}
	if n, err := strconv.Atoi(c.Query("quote_id")); err == nil {
		quoteId = &n
	}
	payments, err := models.GetPayments(c.Request.Context(), clientId, quoteId)
	if err != nil {
		respondError(c, "payments.go", "ListPayments", err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func GetPayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	payment, err := models.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, "payments.go", "GetPayment", err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func CreatePayment(c *gin.Context) {
	var input models.NewPayment
	if !bindJSON(c, &input) {
		return
	}
	payment, err := models.CreatePayment(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "payments.go", "CreatePayment", err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func UpdatePayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input models.PaymentChanges
	if !bindJSON(c, &input) {
		return
	}
	payment, err := models.UpdatePayment(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "payments.go", "UpdatePayment", err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func DeletePayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	payment, err := models.DeletePayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, "payments.go", "DeletePayment", err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
