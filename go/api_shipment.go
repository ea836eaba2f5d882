package shipmentserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	shipmenthttpmapper "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/http/mapper"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application"
	shipmenttypes "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
	shipmentports "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
	"github.com/Apurer/go-gin-shipment-api/internal/shared/formdata"
)

// DefaultMaxProofBytes caps delivery-proof uploads when no limit is configured.
const DefaultMaxProofBytes int64 = 10 << 20

// ShipmentAPI wires HTTP transport with the shipments bounded context service and workflows.
type ShipmentAPI struct {
	service       shipmentports.Service
	workflows     shipmentports.WorkflowOrchestrator
	maxProofBytes int64
}

// NewShipmentAPI creates a ShipmentAPI. A nil workflows orchestrator creates shipments
// through the service directly; maxProofBytes <= 0 selects DefaultMaxProofBytes.
func NewShipmentAPI(service shipmentports.Service, workflows shipmentports.WorkflowOrchestrator, maxProofBytes int64) ShipmentAPI {
	if maxProofBytes <= 0 {
		maxProofBytes = DefaultMaxProofBytes
	}
	return ShipmentAPI{service: service, workflows: workflows, maxProofBytes: maxProofBytes}
}

// Get /api/shipments
// Lists shipments with optional status, enterprise and logistics filters
func (api *ShipmentAPI) ListShipments(c *gin.Context) {
	page, err := optionalInt(c, "page")
	if err != nil {
		responder.RespondError(c, err)
		return
	}
	limit, err := optionalInt(c, "limit")
	if err != nil {
		responder.RespondError(c, err)
		return
	}
	input := shipmenttypes.ListShipmentsInput{
		Statuses:     splitValues(c.QueryArray("status")),
		EnterpriseID: c.Query("enterpriseId"),
		LogisticsID:  c.Query("logisticsId"),
		Page:         page,
		Limit:        limit,
	}
	result, err := api.service.ListShipments(c.Request.Context(), input)
	if err != nil {
		responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmenthttpmapper.FromPage(result))
}

// Get /api/shipments/:id
// Find shipment by ID
func (api *ShipmentAPI) GetShipment(c *gin.Context) {
	shipment, err := api.service.GetShipment(c.Request.Context(), shipmenttypes.ShipmentIdentifier{ID: c.Param("id")})
	if err != nil {
		responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmenthttpmapper.FromProjection(shipment))
}

// Post /api/shipments
// Registers a shipment and anchors it on a best-effort basis
func (api *ShipmentAPI) CreateShipment(c *gin.Context) {
	var payload shipmenthttpmapper.CreateShipment
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.RespondError(c, malformed(err))
		return
	}
	saved, err := api.createShipment(c.Request.Context(), shipmenthttpmapper.ToCreateInput(payload))
	if err != nil {
		responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shipmenthttpmapper.FromProjection(saved))
}

func (api *ShipmentAPI) createShipment(ctx context.Context, input shipmenttypes.CreateShipmentInput) (*shipmenttypes.ShipmentProjection, error) {
	if api.workflows != nil {
		return api.workflows.CreateShipment(ctx, input)
	}
	return api.service.CreateShipment(ctx, input)
}

// Patch /api/shipments/:id
// Replaces the off-chain metadata of a shipment
func (api *ShipmentAPI) PatchShipment(c *gin.Context) {
	var payload shipmenthttpmapper.PatchShipment
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.RespondError(c, malformed(err))
		return
	}
	updated, err := api.service.PatchMetadata(c.Request.Context(), shipmenttypes.PatchMetadataInput{
		ID:               c.Param("id"),
		OffChainMetadata: payload.OffChainMetadata,
	})
	if err != nil {
		responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmenthttpmapper.FromProjection(updated))
}

// Patch /api/shipments/:id/status
// Moves a shipment to a new status and records a milestone
func (api *ShipmentAPI) ChangeStatus(c *gin.Context) {
	var payload shipmenthttpmapper.ChangeStatus
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.RespondError(c, malformed(err))
		return
	}
	updated, err := api.service.ChangeStatus(c.Request.Context(), shipmenttypes.ChangeStatusInput{
		ID:           c.Param("id"),
		Status:       payload.Status,
		CallerUserID: callerClaims(c).CallerID(),
	})
	if err != nil {
		responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmenthttpmapper.FromProjection(updated))
}

// Post /api/shipments/:id/proof
// Uploads delivery proof
func (api *ShipmentAPI) UploadProof(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, api.maxProofBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			payloadTooLarge(c, tooLarge.Limit)
			return
		}
		responder.RespondError(c, malformed(err))
		return
	}
	form, err := formdata.Parse(c.GetHeader("Content-Type"), body)
	if err != nil {
		responder.RespondError(c, malformed(err))
		return
	}
	updated, err := api.service.AttachDeliveryProof(c.Request.Context(), shipmenttypes.AttachDeliveryProofInput{
		ID:                     c.Param("id"),
		File:                   form.File,
		RecipientSignatureName: form.Field("recipientSignatureName"),
	})
	if err != nil {
		responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmenthttpmapper.ProofUploadResponse{Shipment: shipmenthttpmapper.FromProjection(updated)})
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", application.ErrMalformedRequest, err)
}

func optionalInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", application.ErrValidation, name)
	}
	return value, nil
}

// splitValues accepts both repeated and comma separated query values.
func splitValues(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
