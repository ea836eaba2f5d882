package shipmentserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	userapp "github.com/Apurer/go-gin-shipment-api/internal/domains/users/application"
	userdomain "github.com/Apurer/go-gin-shipment-api/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-shipment-api/internal/domains/users/ports"
)

// User is the HTTP representation of a directory user.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	WalletAddress  string `json:"walletAddress,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
}

// RegisterUser is the body of a self-service registration.
type RegisterUser struct {
	Email          string `json:"email" binding:"required"`
	Name           string `json:"name" binding:"required"`
	WalletAddress  string `json:"walletAddress"`
	OrganizationID string `json:"organizationId"`
}

// UpdateWallet replaces the caller's wallet. An empty address clears it.
type UpdateWallet struct {
	WalletAddress *string `json:"walletAddress" binding:"required"`
}

// UserAPI exposes registration and the caller's own directory record.
type UserAPI struct {
	service userports.Service
}

// NewUserAPI creates a UserAPI backed by the users service.
func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

// Get /api/users/me
// Returns the authenticated user
func (api *UserAPI) CurrentUser(c *gin.Context) {
	user, err := api.service.GetByID(c.Request.Context(), callerClaims(c).CallerID())
	if err != nil {
		responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromUser(user))
}

// Post /api/users
// Registers a viewer account; the email must be unused
func (api *UserAPI) RegisterUser(c *gin.Context) {
	var payload RegisterUser
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.RespondError(c, malformed(err))
		return
	}
	user, err := userdomain.NewUser(uuid.NewString(), payload.Email, payload.Name, userdomain.RoleViewer)
	if err != nil {
		responder.RespondError(c, fmt.Errorf("%w: %w", userapp.ErrInvalidInput, err))
		return
	}
	user.UpdateWallet(payload.WalletAddress)
	user.AssignOrganization(payload.OrganizationID)
	saved, err := api.service.CreateUser(c.Request.Context(), user)
	if err != nil {
		responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromUser(saved))
}

// Patch /api/users/me/wallet
// Sets the wallet used to attribute the caller's milestones
func (api *UserAPI) UpdateWallet(c *gin.Context) {
	var payload UpdateWallet
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.RespondError(c, malformed(err))
		return
	}
	user, err := api.service.UpdateWallet(c.Request.Context(), callerClaims(c).CallerID(), *payload.WalletAddress)
	if err != nil {
		responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromUser(user))
}

func fromUser(user *userdomain.User) User {
	return User{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Role:           string(user.Role),
		WalletAddress:  user.WalletAddress,
		OrganizationID: user.OrganizationID,
	}
}
