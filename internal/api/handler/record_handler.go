package handler

import (
	"context"
	"net/http"

	"github.com/ipfs/go-cid"
	"github.com/labstack/echo/v4"

	"github.com/recordlink/registrar/internal/core/domain"
	"github.com/recordlink/registrar/internal/core/ports"
)

// RecordHandler writes criminal records to the registry contract.
type RecordHandler struct {
	records ports.RecordLedger
}

func NewRecordHandler(records ports.RecordLedger) *RecordHandler {
	return &RecordHandler{records: records}
}

type registerCriminalRequest struct {
	CriminalAddress string `json:"criminalAddress" validate:"required,eth_addr"`
}

type addCrimeRequest struct {
	RecordID    string `json:"recordId"    validate:"required,max=128"`
	Description string `json:"description" validate:"required,max=2000"`
	IPFSHash    string `json:"ipfsHash"    validate:"required,max=128"`
}

type recordReceiptResponse struct {
	Message     string `json:"message"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
}

// RegisterCriminal records a subject address on the registry.
//
// @Summary      Register a criminal address
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerCriminalRequest  true  "Subject address"
// @Success      200   {object}  recordReceiptResponse
// @Failure      400   {object}  apierr.Response
// @Failure      401   {object}  apierr.Response
// @Failure      403   {object}  apierr.Response
// @Failure      500   {object}  apierr.Response
// @Router       /contract/register-criminal [post]
func (h *RecordHandler) RegisterCriminal(c echo.Context) error {
	var req registerCriminalRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	// Once submitted the transaction is mined regardless of the caller.
	ctx := context.WithoutCancel(c.Request().Context())
	receipt, err := h.records.RegisterCriminal(ctx, req.CriminalAddress)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recordReceiptResponse{
		Message:     "criminal registered successfully",
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber,
	})
}

// AddCrime appends a crime record that references a published document.
//
// @Summary      Add a crime record
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addCrimeRequest  true  "Crime record"
// @Success      200   {object}  recordReceiptResponse
// @Failure      400   {object}  apierr.Response
// @Failure      401   {object}  apierr.Response
// @Failure      403   {object}  apierr.Response
// @Failure      500   {object}  apierr.Response
// @Router       /contract/add-crime [post]
func (h *RecordHandler) AddCrime(c echo.Context) error {
	var req addCrimeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if _, err := cid.Decode(req.IPFSHash); err != nil {
		return domain.Validationf("ipfsHash must be a valid CID")
	}

	ctx := context.WithoutCancel(c.Request().Context())
	receipt, err := h.records.AddCrime(ctx, domain.CrimeRecord{
		RecordID:    req.RecordID,
		Description: req.Description,
		CID:         req.IPFSHash,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recordReceiptResponse{
		Message:     "crime added successfully",
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber,
	})
}
