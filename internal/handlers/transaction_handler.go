package handlers

import (
	"net/http"

	"finance-tracker/internal/dto"
	"finance-tracker/internal/errors"
	"finance-tracker/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TransactionHandler handles transaction CRUD and the aggregation views
type TransactionHandler struct {
	transactionService services.TransactionServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService services.TransactionServiceInterface) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// ListTransactions retrieves the caller's transactions
// @Summary List transactions
// @Description Page-numbered listing with field filters, description search and ordering
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param type query string false "income or expense"
// @Param category query string false "Category ID (UUID)"
// @Param date query string false "Exact date (YYYY-MM-DD)"
// @Param start_date query string false "Inclusive lower bound (YYYY-MM-DD)"
// @Param end_date query string false "Inclusive upper bound (YYYY-MM-DD)"
// @Param search query string false "Case-insensitive substring of the description"
// @Param ordering query string false "date, -date, amount or -amount" default(-date)
// @Param page query int false "1-based page number" default(1)
// @Param page_size query int false "Results per page (max 100)" default(10)
// @Success 200 {object} dto.Page[dto.TransactionResponse]
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid filter"
// @Router /transactions/ [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var query dto.TransactionListQuery
	if ok, err := bindAndValidate(c, &query); !ok {
		return err
	}

	page, err := h.transactionService.List(userID, query)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, page)
}

// CreateTransaction records an income or expense
// @Summary Create transaction
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.TransactionRequest true "Transaction"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Field errors, including a category the caller does not own"
// @Router /transactions/ [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.TransactionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	tx, err := h.transactionService.Create(userID, req)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewTransactionResponse(tx))
}

func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.TransactionNotFound)
	}

	tx, err := h.transactionService.Get(userID, id)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

func (h *TransactionHandler) ReplaceTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.TransactionNotFound)
	}

	var req dto.TransactionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	tx, err := h.transactionService.Replace(userID, id, req)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// PatchTransaction changes the fields present in the body. "category": null
// detaches the category.
func (h *TransactionHandler) PatchTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.TransactionNotFound)
	}

	var patch dto.TransactionPatch
	if ok, err := bindAndValidate(c, &patch); !ok {
		return err
	}

	tx, err := h.transactionService.Patch(userID, id, patch)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.TransactionNotFound)
	}

	if err := h.transactionService.Delete(userID, id); err != nil {
		return SendServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Summary returns all-time totals and the current vs previous month view
// @Summary Transaction summary
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SummaryResponse
// @Router /transactions/summary/ [get]
func (h *TransactionHandler) Summary(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	summary, err := h.transactionService.Summary(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewSummaryResponse(summary))
}

// Trends returns monthly income and expense totals over the last 180 days
// @Summary Monthly trends
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.TrendResponse
// @Router /transactions/trends/ [get]
func (h *TransactionHandler) Trends(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	points, err := h.transactionService.Trends(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTrendResponses(points))
}

// ByCategory returns expense totals per category, largest first
// @Summary Expenses by category
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.CategoryTotalResponse
// @Router /transactions/by-category/ [get]
func (h *TransactionHandler) ByCategory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	totals, err := h.transactionService.ByCategory(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewCategoryTotalResponses(totals))
}
