package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tallersur/presupuestos_backend/models"
	"github.com/tallersur/presupuestos_backend/models/reports"
	"github.com/tallersur/presupuestos_backend/utils"
)

func ListClients(c *gin.Context) {
	var name *string
	if v := c.Query("name"); v != "" {
		name = &v
	}
	clients, err := models.GetClients(c.Request.Context(), name)
	if err != nil {
		respondError(c, "clients.go", "ListClients", err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func GetClient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	client, err := models.GetClient(c.Request.Context(), id, "CustomPrices", "CustomPrices.Product")
	if err != nil {
		respondError(c, "clients.go", "GetClient", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func CreateClient(c *gin.Context) {
	var input models.NewClient
	if !bindJSON(c, &input) {
		return
	}
	client, err := models.CreateClient(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "clients.go", "CreateClient", err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func UpdateClient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input models.NewClient
	if !bindJSON(c, &input) {
		return
	}
	client, err := models.UpdateClient(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "clients.go", "UpdateClient", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func DeleteClient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	client, err := models.DeleteClient(c.Request.Context(), id)
	if err != nil {
		respondError(c, "clients.go", "DeleteClient", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func ledgerOptionsFromQuery(c *gin.Context) models.LedgerOptions {
	opts := models.LedgerOptions{
		StartDate: utils.ParseDateFilter(c.Query("start_date")),
		EndDate:   utils.ParseDateFilter(c.Query("end_date")),
		Page:      1,
	}
	if pageParam := strings.TrimSpace(c.Query("page")); pageParam != "" {
		if pageParam == "last" {
			opts.Page = models.LedgerPageLast
		} else if n, err := strconv.Atoi(pageParam); err == nil {
			opts.Page = n
		}
	}
	if n, err := strconv.Atoi(c.Query("per_page")); err == nil && n > 0 {
		opts.PerPage = n
	}
	return opts
}

func GetClientLedger(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ledger, err := models.ComputeClientLedger(c.Request.Context(), id, ledgerOptionsFromQuery(c))
	if err != nil {
		respondError(c, "clients.go", "GetClientLedger", err)
		return
	}
	c.JSON(http.StatusOK, ledger)
}

func ExportClientLedger(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	client, err := models.GetClient(c.Request.Context(), id)
	if err != nil {
		respondError(c, "clients.go", "ExportClientLedger", err)
		return
	}
	ledger, err := models.ComputeClientLedger(c.Request.Context(), id, ledgerOptionsFromQuery(c))
	if err != nil {
		respondError(c, "clients.go", "ExportClientLedger", err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=ledger_client_%d.xlsx", id))
	if err := reports.ExportLedgerExcel(c.Writer, client, ledger); err != nil {
		respondError(c, "clients.go", "ExportClientLedger", err)
	}
}
