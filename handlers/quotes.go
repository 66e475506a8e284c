package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tallersur/presupuestos_backend/models"
)

func ListQuotes(c *gin.Context) {
	var clientId *int
	if n, err := strconv.Atoi(c.Query("client_id")); err == nil {
		clientId = &n
	}
	var status *models.QuoteStatus
	if v := c.Query("status"); v != "" {
		parsed, err := models.ParseQuoteStatus(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = &parsed
	}
	quotes, err := models.GetQuotes(c.Request.Context(), clientId, status)
	if err != nil {
		respondError(c, "quotes.go", "ListQuotes", err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func GetQuote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	quote, err := models.GetQuote(c.Request.Context(), id)
	if err != nil {
		respondError(c, "quotes.go", "GetQuote", err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func CreateQuote(c *gin.Context) {
	var input models.NewQuote
	if !bindJSON(c, &input) {
		return
	}
	quote, err := models.CreateQuote(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "quotes.go", "CreateQuote", err)
		return
	}
	c.JSON(http.StatusCreated, quote)
}

func UpdateQuote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input models.NewQuote
	if !bindJSON(c, &input) {
		return
	}
	quote, err := models.UpdateQuote(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "quotes.go", "UpdateQuote", err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func DeleteQuote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	quote, err := models.DeleteQuote(c.Request.Context(), id)
	if err != nil {
		respondError(c, "quotes.go", "DeleteQuote", err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// SendQuote finalizes a draft ("mark as sent").
func SendQuote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	quote, err := models.MarkQuoteAsSent(c.Request.Context(), id)
	if err != nil {
		respondError(c, "quotes.go", "SendQuote", err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func CancelQuote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	quote, err := models.CancelQuote(c.Request.Context(), id)
	if err != nil {
		respondError(c, "quotes.go", "CancelQuote", err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// PriceLookup answers the effective (custom or base) price for a client and
// product pair.
func PriceLookup(c *gin.Context) {
	clientId, err := strconv.Atoi(c.Query("client_id"))
	if err != nil || clientId <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing parameters"})
		return
	}
	productId, err := strconv.Atoi(c.Query("product_id"))
	if err != nil || productId <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing parameters"})
		return
	}
	price, lookupErr := models.GetPriceForClient(c.Request.Context(), clientId, productId)
	if lookupErr != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": lookupErr.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"price": price})
}
