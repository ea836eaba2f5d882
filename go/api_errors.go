package shipmentserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application"
	userapp "github.com/Apurer/go-gin-shipment-api/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-shipment-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/go-gin-shipment-api/internal/shared/errors"
)

// responder renders every handler failure as an RFC 7807 document carrying a
// stable code. User errors are mapped before shipment errors.
var responder = apierrors.NewResponder("", string(application.KindInternal), userErrorMapper, shipmentErrorMapper)

func shipmentErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	var problem apierrors.ProblemDetail
	switch application.KindOf(err) {
	case application.KindValidation:
		problem = apierrors.ErrValidation
	case application.KindNotFound:
		problem = apierrors.ErrNotFound
	case application.KindConflict:
		problem = apierrors.ErrConflict
	case application.KindStorageFailure,
		application.KindLedgerUnavailable,
		application.KindLedgerRejected,
		application.KindLedgerTransport:
		problem = apierrors.ErrBadGateway
	case application.KindInternal:
		problem = apierrors.ErrInternal
	default:
		return apierrors.ProblemDetail{}, false
	}
	return problem.WithDetail(err.Error()).WithCode(application.CodeOf(err)), true
}

func userErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, userports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithCode(string(application.KindNotFound)), true
	case errors.Is(err, userapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()).WithCode(string(application.KindValidation)), true
	case errors.Is(err, userapp.ErrConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()).WithCode(string(application.KindConflict)), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}

func unauthorized(c *gin.Context, detail string) {
	responder.Respond(c, apierrors.ErrUnauthorized.WithDetail(detail).WithCode("UNAUTHORIZED"))
}

func forbidden(c *gin.Context, detail string) {
	responder.Respond(c, apierrors.ErrForbidden.WithDetail(detail).WithCode("FORBIDDEN"))
}

func payloadTooLarge(c *gin.Context, limit int64) {
	responder.Respond(c, apierrors.ErrPayloadTooLarge.
		WithDetail(http.StatusText(http.StatusRequestEntityTooLarge)).
		WithCode(string(application.KindValidation)).
		WithExtension("limitBytes", limit))
}
