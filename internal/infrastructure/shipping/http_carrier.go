package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shipping"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
)

// HTTPCarrierConfig contains configuration for a carrier REST API
type HTTPCarrierConfig struct {
	Code    string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

var (
	ErrCarrierMissingCode    = errors.New("carrier: missing carrier code")
	ErrCarrierMissingBaseURL = errors.New("carrier: missing base URL")
	ErrCarrierMissingAPIKey  = errors.New("carrier: missing API key")
)

// Validate validates the configuration
func (c *HTTPCarrierConfig) Validate() error {
	if c.Code == "" {
		return ErrCarrierMissingCode
	}
	if c.BaseURL == "" {
		return ErrCarrierMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrCarrierMissingAPIKey
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}

// HTTPCarrierConfigFrom builds the carrier configuration from application config
func HTTPCarrierConfigFrom(cfg config.ShippingConfig) *HTTPCarrierConfig {
	return &HTTPCarrierConfig{
		Code:    cfg.CarrierCode,
		BaseURL: cfg.CarrierBaseURL,
		APIKey:  cfg.CarrierAPIKey,
		Timeout: cfg.CarrierTimeout,
	}
}

type createShipmentRequest struct {
	Reference string           `json:"reference"`
	SellerID  string           `json:"seller_id"`
	Recipient carrierRecipient `json:"recipient"`
	Parcel    carrierParcel    `json:"parcel"`
}

type carrierRecipient struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

type carrierParcel struct {
	Items       int `json:"items"`
	WeightGrams int `json:"weight_grams,omitempty"`
}

type createShipmentResponse struct {
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url"`
}

type trackingResponse struct {
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`
}

type carrierError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPCarrier books parcels through a carrier REST API
type HTTPCarrier struct {
	config     *HTTPCarrierConfig
	httpClient *http.Client
}

// NewHTTPCarrier creates a new HTTP carrier adapter
func NewHTTPCarrier(config *HTTPCarrierConfig) (*HTTPCarrier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.Code = strings.ToUpper(config.Code)
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &HTTPCarrier{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

func (c *HTTPCarrier) Code() string { return c.config.Code }

// CreateShipment posts the parcel to /v1/shipments
func (c *HTTPCarrier) CreateShipment(ctx context.Context, req shipping.ShipmentRequest) (*shipping.Shipment, error) {
	body := createShipmentRequest{
		Reference: req.SubOrderNumber,
		SellerID:  req.SellerID.String(),
		Recipient: carrierRecipient{
			Name:       req.Recipient.FullName,
			Line1:      req.Recipient.Line1,
			Line2:      req.Recipient.Line2,
			City:       req.Recipient.City,
			PostalCode: req.Recipient.PostalCode,
			Country:    req.Recipient.Country,
			Phone:      req.Recipient.Phone,
		},
		Parcel: carrierParcel{Items: req.Parcel.Items, WeightGrams: req.Parcel.WeightGrams},
	}
	var resp createShipmentResponse
	if err := c.doRequest(ctx, http.MethodPost, "/v1/shipments", body, &resp); err != nil {
		return nil, err
	}
	if resp.TrackingNumber == "" {
		return nil, fmt.Errorf("%w: response without tracking number", shipping.ErrCarrierRequest)
	}
	return &shipping.Shipment{
		Carrier:        c.config.Code,
		TrackingNumber: resp.TrackingNumber,
		LabelURL:       resp.LabelURL,
	}, nil
}

// Track reads /v1/shipments/{tracking}/tracking
func (c *HTTPCarrier) Track(ctx context.Context, trackingNumber string) (shipping.TrackingStatus, error) {
	var resp trackingResponse
	path := "/v1/shipments/" + url.PathEscape(trackingNumber) + "/tracking"
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	status, err := shipping.ParseTrackingStatus(resp.Status)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shipping.ErrCarrierRequest, err)
	}
	return status, nil
}

// doRequest performs an authenticated JSON request against the carrier API
func (c *HTTPCarrier) doRequest(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("carrier: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("carrier: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shipping.ErrCarrierRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("carrier: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shipping.ErrShipmentNotFound, path)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var ce carrierError
		_ = json.Unmarshal(respBody, &ce)
		return fmt.Errorf("%w: HTTP %d %s", shipping.ErrCarrierBadRequest, resp.StatusCode, ce.Message)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: HTTP %d", shipping.ErrCarrierRequest, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: invalid response: %v", shipping.ErrCarrierRequest, err)
	}
	return nil
}

var _ shipping.Provider = (*HTTPCarrier)(nil)
