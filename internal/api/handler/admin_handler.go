package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/recordlink/registrar/internal/core/domain"
	"github.com/recordlink/registrar/internal/core/ports"
)

// AdminHandler lets operators find accounts left without a ledger reference
// and re-drive their publication and ledger commit.
type AdminHandler struct {
	linkage ports.LinkageService
	queue   ports.RelinkQueue
}

func NewAdminHandler(linkage ports.LinkageService, queue ports.RelinkQueue) *AdminHandler {
	return &AdminHandler{linkage: linkage, queue: queue}
}

type unlinkedResponse struct {
	Accounts []domain.AccountSummary `json:"accounts"`
	Count    int                     `json:"count"`
}

type relinkResponse struct {
	AccountID string                  `json:"account_id"`
	Ledger    *domain.LedgerReference `json:"ledger"`
}

type relinkBatchRequest struct {
	AccountIDs []string `json:"account_ids" validate:"required,min=1,max=100,dive,uuid"`
}

type relinkBatchResponse struct {
	Accepted []string `json:"accepted"`
	Rejected []string `json:"rejected"`
}

// ListUnlinked returns accounts without a ledger reference, oldest first.
//
// @Summary      Accounts missing ledger linkage
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum results (default 100, max 500)"
// @Success      200    {object}  unlinkedResponse
// @Failure      400    {object}  apierr.Response
// @Failure      403    {object}  apierr.Response
// @Router       /admin/accounts/unlinked [get]
func (h *AdminHandler) ListUnlinked(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return domain.Validationf("limit must be a positive integer")
		}
		limit = n
	}

	accounts, err := h.linkage.ListUnlinked(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if accounts == nil {
		accounts = []domain.AccountSummary{}
	}
	return c.JSON(http.StatusOK, unlinkedResponse{Accounts: accounts, Count: len(accounts)})
}

// Relink re-runs publication and ledger commit for one account and waits for
// the outcome. Already linked accounts are returned unchanged.
//
// @Summary      Relink one account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  relinkResponse
// @Failure      400  {object}  apierr.Response
// @Failure      403  {object}  apierr.Response
// @Failure      404  {object}  apierr.Response
// @Failure      500  {object}  apierr.Response
// @Router       /admin/accounts/{id}/relink [post]
func (h *AdminHandler) Relink(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return domain.Validationf("id must be a valid account id")
	}

	ref, err := h.linkage.Relink(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, relinkResponse{AccountID: id, Ledger: ref})
}

// RelinkBatch queues accounts for asynchronous relinking.
//
// @Summary      Queue accounts for relinking
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      relinkBatchRequest  true  "Account IDs"
// @Success      202   {object}  relinkBatchResponse
// @Failure      400   {object}  apierr.Response
// @Failure      403   {object}  apierr.Response
// @Router       /admin/accounts/relink [post]
func (h *AdminHandler) RelinkBatch(c echo.Context) error {
	var req relinkBatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp := relinkBatchResponse{Accepted: []string{}, Rejected: []string{}}
	for _, id := range req.AccountIDs {
		if h.queue.Enqueue(id) {
			resp.Accepted = append(resp.Accepted, id)
		} else {
			resp.Rejected = append(resp.Rejected, id)
		}
	}
	return c.JSON(http.StatusAccepted, resp)
}
