package shipmentserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// Middleware runs before HandlerFunc.
	Middleware []gin.HandlerFunc
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers and the authenticator guarding them.
type ApiHandleFunctions struct {
	HealthAPI   HealthAPI
	ShipmentAPI ShipmentAPI
	UserAPI     UserAPI
	Auth        *Authenticator
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.Use(RequestID())
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := append(append([]gin.HandlerFunc{}, route.Middleware...), route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc is used when a route has no handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(h ApiHandleFunctions) []Route {
	auth := h.Auth
	requireAuth := func(c *gin.Context) { unauthorized(c, "authentication is not configured") }
	optionalAuth := func(c *gin.Context) { c.Next() }
	if auth != nil {
		requireAuth = auth.RequireAuth()
		optionalAuth = auth.OptionalAuth()
	}
	return []Route{
		{
			Name:        "Health",
			Method:      http.MethodGet,
			Pattern:     "/api/health",
			HandlerFunc: h.HealthAPI.Health,
		},
		{
			Name:        "ListShipments",
			Method:      http.MethodGet,
			Pattern:     "/api/shipments",
			HandlerFunc: h.ShipmentAPI.ListShipments,
		},
		{
			Name:        "GetShipment",
			Method:      http.MethodGet,
			Pattern:     "/api/shipments/:id",
			HandlerFunc: h.ShipmentAPI.GetShipment,
		},
		{
			Name:        "CreateShipment",
			Method:      http.MethodPost,
			Pattern:     "/api/shipments",
			Middleware:  []gin.HandlerFunc{requireAuth, RequireRole("MANAGER", "ADMIN")},
			HandlerFunc: h.ShipmentAPI.CreateShipment,
		},
		{
			Name:        "PatchShipment",
			Method:      http.MethodPatch,
			Pattern:     "/api/shipments/:id",
			HandlerFunc: h.ShipmentAPI.PatchShipment,
		},
		{
			Name:        "ChangeShipmentStatus",
			Method:      http.MethodPatch,
			Pattern:     "/api/shipments/:id/status",
			Middleware:  []gin.HandlerFunc{optionalAuth},
			HandlerFunc: h.ShipmentAPI.ChangeStatus,
		},
		{
			Name:        "UploadDeliveryProof",
			Method:      http.MethodPost,
			Pattern:     "/api/shipments/:id/proof",
			HandlerFunc: h.ShipmentAPI.UploadProof,
		},
		{
			Name:        "CurrentUser",
			Method:      http.MethodGet,
			Pattern:     "/api/users/me",
			Middleware:  []gin.HandlerFunc{requireAuth},
			HandlerFunc: h.UserAPI.CurrentUser,
		},
		{
			Name:        "RegisterUser",
			Method:      http.MethodPost,
			Pattern:     "/api/users",
			HandlerFunc: h.UserAPI.RegisterUser,
		},
		{
			Name:        "UpdateWallet",
			Method:      http.MethodPatch,
			Pattern:     "/api/users/me/wallet",
			Middleware:  []gin.HandlerFunc{requireAuth},
			HandlerFunc: h.UserAPI.UpdateWallet,
		},
	}
}
