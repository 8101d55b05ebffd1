package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/recordlink/registrar/internal/core/ports"
)

type AuthHandler struct {
	registration ports.RegistrationService
}

func NewAuthHandler(registration ports.RegistrationService) *AuthHandler {
	return &AuthHandler{registration: registration}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"     validate:"required,oneof=admin registrar viewer"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registeredUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	IPFSHash     string `json:"ipfsHash"`
	BlockchainTx string `json:"blockchainTx"`
}

type registerResponse struct {
	Token string         `json:"token"`
	User  registeredUser `json:"user"`
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type meResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register creates an account, publishes its document and anchors it on the
// ledger. The token is only returned when every stage succeeded.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  apierr.Response
// @Failure      409   {object}  apierr.Response
// @Failure      429   {object}  apierr.Response
// @Failure      500   {object}  apierr.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.registration.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Token: res.Token.Value,
		User: registeredUser{
			ID:           res.Account.ID,
			Username:     res.Account.Username,
			Role:         string(res.Account.Role),
			IPFSHash:     res.Publication.CID,
			BlockchainTx: res.Publication.TxHash,
		},
	})
}

// Login exchanges credentials for a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  apierr.Response
// @Failure      401   {object}  apierr.Response
// @Failure      429   {object}  apierr.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.registration.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token: res.Token.Value,
		User: userView{
			ID:       res.Account.ID,
			Username: res.Account.Username,
			Role:     string(res.Account.Role),
		},
	})
}

// Me returns the principal the bearer token identifies.
//
// @Summary      Current principal
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  apierr.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, role, token, err := principal(c)
	if err != nil {
		return err
	}
	resp := meResponse{ID: id, Role: string(role)}
	if token != nil {
		resp.ExpiresAt = token.ExpiresAt
	}
	return c.JSON(http.StatusOK, resp)
}
