package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Tanisha-99/internal-transfer-system/shared/cqrs"
	"github.com/Tanisha-99/internal-transfer-system/shared/middleware"
	"github.com/Tanisha-99/internal-transfer-system/shared/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.Account, error)
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.AccountView, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

type CreateAccountRequest struct {
	AccountID      int64           `json:"account_id" validate:"gt=0"`
	InitialBalance decimal.Decimal `json:"initial_balance" validate:"positive_decimal"`
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		AccountID:      req.AccountID,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewAccountView(account))
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("accountId"), 10, 64)
	if err != nil || accountID <= 0 {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	view, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{AccountID: accountID})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
