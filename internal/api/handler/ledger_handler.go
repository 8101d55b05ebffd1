package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/recordlink/registrar/internal/core/domain"
	"github.com/recordlink/registrar/internal/core/ports"
)

// LedgerHandler exposes read access to the registry contract.
type LedgerHandler struct {
	ledger ports.LedgerClient
}

func NewLedgerHandler(ledger ports.LedgerClient) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

type ledgerRecordResponse struct {
	AccountID string `json:"account_id"`
	CID       string `json:"cid"`
}

// Lookup returns the CID the contract holds for an account.
//
// @Summary      Ledger record for an account
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  ledgerRecordResponse
// @Failure      400  {object}  apierr.Response
// @Failure      401  {object}  apierr.Response
// @Failure      404  {object}  apierr.Response
// @Failure      500  {object}  apierr.Response
// @Router       /ledger/accounts/{id} [get]
func (h *LedgerHandler) Lookup(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return domain.Validationf("id must be a valid account id")
	}

	cid, err := h.ledger.LookupCID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ledgerRecordResponse{AccountID: id, CID: cid})
}
