package shipping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shipping"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCarrier(t *testing.T, handler http.HandlerFunc) *HTTPCarrier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	carrier, err := NewHTTPCarrier(&HTTPCarrierConfig{Code: "parcel_hub", BaseURL: server.URL + "/", APIKey: "secret-key"})
	require.NoError(t, err)
	return carrier
}

func TestHTTPCarrierConfig_Validate(t *testing.T) {
	cfg := &HTTPCarrierConfig{}
	assert.ErrorIs(t, cfg.Validate(), ErrCarrierMissingCode)
	cfg.Code = "PARCEL_HUB"
	assert.ErrorIs(t, cfg.Validate(), ErrCarrierMissingBaseURL)
	cfg.BaseURL = "https://carrier.test"
	assert.ErrorIs(t, cfg.Validate(), ErrCarrierMissingAPIKey)
	cfg.APIKey = "k"
	require.NoError(t, cfg.Validate())
	assert.NotZero(t, cfg.Timeout)
}

func TestHTTPCarrier_CreateShipment(t *testing.T) {
	var received createShipmentRequest
	carrier := newTestCarrier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/shipments", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"tracking_number":"PH123456","label_url":"https://carrier.test/labels/PH123456.pdf"}`))
	})

	shipment, err := carrier.CreateShipment(context.Background(), shipping.ShipmentRequest{
		SubOrderNumber: "MKT-20260314-00001-1",
		SellerID:       uuid.New(),
		Recipient: valueobject.Address{
			FullName: "Anna Nowak", Line1: "Marszalkowska 1", City: "Warszawa",
			PostalCode: "00-001", Country: "PL",
		},
		Parcel: shipping.Parcel{Items: 3},
	})

	require.NoError(t, err)
	assert.Equal(t, "PARCEL_HUB", shipment.Carrier)
	assert.Equal(t, "PH123456", shipment.TrackingNumber)
	assert.Equal(t, "https://carrier.test/labels/PH123456.pdf", shipment.LabelURL)
	assert.Equal(t, "MKT-20260314-00001-1", received.Reference)
	assert.Equal(t, "Warszawa", received.Recipient.City)
	assert.Equal(t, 3, received.Parcel.Items)
}

func TestHTTPCarrier_Track(t *testing.T) {
	carrier := newTestCarrier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/v1/shipments/PH1/tracking":
			_, _ = w.Write([]byte(`{"tracking_number":"PH1","status":"delivered"}`))
		case "/v1/shipments/PH2/tracking":
			_, _ = w.Write([]byte(`{"tracking_number":"PH2","status":"lost in space"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	status, err := carrier.Track(ctx, "PH1")
	require.NoError(t, err)
	assert.Equal(t, shipping.TrackingDelivered, status)

	_, err = carrier.Track(ctx, "PH2")
	assert.ErrorIs(t, err, shipping.ErrCarrierRequest)

	_, err = carrier.Track(ctx, "PH3")
	assert.ErrorIs(t, err, shipping.ErrShipmentNotFound)
}

func TestHTTPCarrier_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rejected", http.StatusUnprocessableEntity, `{"code":"INVALID_POSTCODE","message":"bad postcode"}`, shipping.ErrCarrierBadRequest},
		{"unavailable", http.StatusBadGateway, ``, shipping.ErrCarrierRequest},
		{"malformed", http.StatusOK, `not json`, shipping.ErrCarrierRequest},
		{"no tracking number", http.StatusOK, `{}`, shipping.ErrCarrierRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carrier := newTestCarrier(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := carrier.CreateShipment(context.Background(), shipping.ShipmentRequest{SubOrderNumber: "X-1"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewRegistry(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.BaseURL = "https://api.mercato.test"

	registry, err := NewRegistry(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"EXPRESS_COURIER", "STANDARD_POST"}, registry.Codes())

	cfg.Shipping = config.ShippingConfig{CarrierAPIEnabled: true, CarrierCode: "STANDARD_POST"}
	_, err = NewRegistry(cfg, zap.NewNop())
	assert.ErrorIs(t, err, ErrCarrierMissingBaseURL)

	cfg.Shipping.CarrierBaseURL = "https://carrier.test"
	cfg.Shipping.CarrierAPIKey = "k"
	registry, err = NewRegistry(cfg, zap.NewNop())
	require.NoError(t, err)
	p, err := registry.Get("STANDARD_POST")
	require.NoError(t, err)
	assert.IsType(t, &HTTPCarrier{}, p)
}
