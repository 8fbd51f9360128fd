package handler

import (
	"context"
	"net/http"

	"github.com/Tanisha-99/internal-transfer-system/shared/cqrs"
	"github.com/Tanisha-99/internal-transfer-system/shared/middleware"
	"github.com/Tanisha-99/internal-transfer-system/shared/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransferCommander defines the write-side operations used by TransferHandler.
type TransferCommander interface {
	Transfer(context.Context, cqrs.TransferCommand) (*models.Transfer, error)
}

// TransferQuerier defines the read-side operations used by TransferHandler.
type TransferQuerier interface {
	GetTransfer(context.Context, cqrs.GetTransferQuery) (*models.TransferView, error)
}

type TransferHandler struct {
	commands TransferCommander
	queries  TransferQuerier
}

type CreateTransferRequest struct {
	SourceAccountID      int64           `json:"source_account_id" validate:"gt=0"`
	DestinationAccountID int64           `json:"destination_account_id" validate:"gt=0"`
	Amount               decimal.Decimal `json:"amount" validate:"positive_decimal"`
}

func NewTransferHandler(commands TransferCommander, queries TransferQuerier) *TransferHandler {
	return &TransferHandler{commands: commands, queries: queries}
}

func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	transfer, err := h.commands.Transfer(c.Request.Context(), cqrs.TransferCommand{
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewTransferView(transfer))
}

func (h *TransferHandler) GetTransfer(c *gin.Context) {
	view, err := h.queries.GetTransfer(c.Request.Context(), cqrs.GetTransferQuery{
		TransferID: c.Param("transactionId"),
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
