//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	shipmentserver "github.com/Apurer/go-gin-shipment-api/go"
	shipmentsdirectory "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/directory"
	shipmentsmemory "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/memory"
	shipmentsobs "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/observability"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/proofstore"
	shipmentsworkflows "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/workflows"
	shipmentsapp "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application"
	shipmentdomain "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	usermemory "github.com/Apurer/go-gin-shipment-api/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/go-gin-shipment-api/internal/domains/users/application"
	pacttest "github.com/Apurer/go-gin-shipment-api/test/pact"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

func TestShipmentProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	reset := func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
		app.reset(t)
		return nil, nil
	}
	verifier := pactprovider.NewVerifier()
	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers: models.StateHandlers{
			pacttest.StateShipmentsBaseline: reset,
			pacttest.StateShipmentMissing:   reset,
			pacttest.StateShipmentExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
				app.reset(t)
				if setup {
					app.seedExisting(t)
				}
				return nil, nil
			},
		},
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp swaps in a fresh in-memory stack on every reset.
type contractProviderApp struct {
	handler atomic.Pointer[http.Handler]
	repo    atomic.Pointer[shipmentsmemory.Repository]
	server  *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		(*app.handler.Load()).ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	repo := shipmentsmemory.NewRepository()
	users := userapp.NewService(usermemory.NewRepository())
	service := shipmentsobs.New(shipmentsapp.NewService(repo,
		shipmentsapp.WithProofStorage(proofstore.NewMockStorage()),
		shipmentsapp.WithUserDirectory(shipmentsdirectory.NewUsers(users)),
	))
	auth, err := shipmentserver.NewAuthenticator(pacttest.JWTSecret)
	require.NoError(t, err)

	router := gin.New()
	router.Use(gin.Recovery())
	router = shipmentserver.NewRouterWithGinEngine(router, shipmentserver.ApiHandleFunctions{
		HealthAPI:   shipmentserver.NewHealthAPI(),
		ShipmentAPI: shipmentserver.NewShipmentAPI(service, shipmentsworkflows.NewInlineShipmentWorkflows(service), 0),
		UserAPI:     shipmentserver.NewUserAPI(users),
		Auth:        auth,
	})
	var handler http.Handler = router
	a.handler.Store(&handler)
	a.repo.Store(repo)
}

func (a *contractProviderApp) seedExisting(t testing.TB) {
	t.Helper()
	fields := pacttest.ExistingShipment()
	shipment, err := shipmentdomain.NewShipment(
		pacttest.ExistingShipmentID,
		fields["trackingNumber"].(string),
		fields["origin"].(string),
		fields["destination"].(string),
		fields["enterpriseId"].(string),
		fields["logisticsId"].(string),
	)
	require.NoError(t, err)
	_, err = a.repo.Load().Insert(context.Background(), shipment)
	require.NoError(t, err)
}
