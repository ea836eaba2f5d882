//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	shipmentserver "github.com/Apurer/go-gin-shipment-api/go"
	pacttest "github.com/Apurer/go-gin-shipment-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type shipmentPayload struct {
	ID             string `json:"id"`
	TrackingNumber string `json:"trackingNumber"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	Status         string `json:"status"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

type apiError struct {
	status int
	code   string
	title  string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s [%s] (status %d)", e.title, e.code, e.status)
}

func TestShipmentPortalContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	auth, err := shipmentserver.NewAuthenticator(pacttest.JWTSecret)
	require.NoError(t, err)
	token, err := auth.IssueToken(pacttest.ManagerID, pacttest.ManagerRole, pacttest.TokenTTL)
	require.NoError(t, err)

	create := pacttest.ExampleCreatePayload()
	existing := pacttest.ExistingShipment()
	statusTerm := "CREATED|IN_TRANSIT|DELIVERED|CANCELLED"
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateShipmentsBaseline).
		UponReceiving("a manager registers a shipment").
		WithRequest("POST", "/api/shipments", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", matchers.Regex("Bearer "+token, "^Bearer [A-Za-z0-9_\\-]+\\.[A-Za-z0-9_\\-]+\\.[A-Za-z0-9_\\-]+$"))
			b.JSONBody(create)
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":             matchers.Like("3f0c9a4e-6f1d-4d5b-9a43-0c2f6a1b7e21"),
				"trackingNumber": matchers.S(pacttest.NewTrackingNumber),
				"origin":         matchers.Like(create["origin"]),
				"destination":    matchers.Like(create["destination"]),
				"status":         matchers.Term("CREATED", statusTerm),
				"milestones":     matchers.Like([]any{}),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateShipmentExists).
		UponReceiving("a request to fetch an existing shipment").
		WithRequest("GET", "/api/shipments/"+pacttest.ExistingShipmentID).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":             matchers.S(pacttest.ExistingShipmentID),
				"trackingNumber": matchers.Like(existing["trackingNumber"]),
				"origin":         matchers.Like(existing["origin"]),
				"destination":    matchers.Like(existing["destination"]),
				"status":         matchers.Term("CREATED", statusTerm),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateShipmentMissing).
		UponReceiving("a request for a missing shipment").
		WithRequest("GET", "/api/shipments/"+pacttest.MissingShipmentID).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
				"code":   matchers.S("NOT_FOUND"),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newShipmentClient(config, token)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		created, err := client.CreateShipment(ctx, create)
		if err != nil {
			return fmt.Errorf("create shipment: %w", err)
		}
		if created.ID == "" || created.TrackingNumber != pacttest.NewTrackingNumber {
			return fmt.Errorf("unexpected created shipment %+v", created)
		}

		fetched, err := client.GetShipment(ctx, pacttest.ExistingShipmentID)
		if err != nil {
			return fmt.Errorf("get shipment: %w", err)
		}
		if fetched.ID != pacttest.ExistingShipmentID {
			return fmt.Errorf("expected shipment %s, got %+v", pacttest.ExistingShipmentID, fetched)
		}

		_, err = client.GetShipment(ctx, pacttest.MissingShipmentID)
		apiErr, ok := err.(apiError)
		if !ok || apiErr.status != http.StatusNotFound || apiErr.code != "NOT_FOUND" {
			return fmt.Errorf("expected NOT_FOUND problem, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type shipmentClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newShipmentClient(config pactconsumer.MockServerConfig, token string) *shipmentClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &shipmentClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		token:      token,
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *shipmentClient) CreateShipment(ctx context.Context, body map[string]any) (*shipmentPayload, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/shipments", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.do(req)
}

func (c *shipmentClient) GetShipment(ctx context.Context, id string) (*shipmentPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/shipments/"+id, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *shipmentClient) do(req *http.Request) (*shipmentPayload, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var problem problemDetail
		_ = json.NewDecoder(res.Body).Decode(&problem)
		status := problem.Status
		if status == 0 {
			status = res.StatusCode
		}
		return nil, apiError{status: status, code: problem.Code, title: problem.Title}
	}

	var payload shipmentPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
