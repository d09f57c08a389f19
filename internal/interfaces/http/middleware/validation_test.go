package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressRequest struct {
	Country  string `json:"country" binding:"required,country"`
	Currency string `json:"currency" binding:"required,currency"`
	Quantity int    `json:"quantity" binding:"min=1"`
}

func TestRegisterValidations(t *testing.T) {
	v := validator.New()
	RegisterValidations(v)

	err := v.Struct(struct {
		Country  string `json:"country" validate:"country"`
		Currency string `json:"currency" validate:"currency"`
	}{Country: "PL", Currency: "EUR"})
	assert.NoError(t, err)

	err = v.Struct(struct {
		Country  string `json:"country" validate:"country"`
		Currency string `json:"currency" validate:"currency"`
	}{Country: "Poland", Currency: "XYZ"})
	require.Error(t, err)

	details := ValidationDetails(err)
	require.Len(t, details, 2)
	assert.Equal(t, "country", details[0].Field)
	assert.Equal(t, "Must be an ISO 3166-1 alpha-2 country code", details[0].Message)
	assert.Equal(t, "currency", details[1].Field)
	assert.Equal(t, "Unsupported currency code", details[1].Message)
}

func TestHandleValidationError(t *testing.T) {
	require.NoError(t, SetupValidator())

	router := gin.New()
	router.Use(RequestID())
	router.POST("/addr", func(c *gin.Context) {
		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	rec := serve(router, httptest.NewRequest(http.MethodPost, "/addr",
		strings.NewReader(`{"country":"DE","currency":"EUR","quantity":0}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	info := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", info.Code)
	require.Len(t, info.Details, 1)
	assert.Equal(t, "quantity", info.Details[0].Field)

	rec = serve(router, httptest.NewRequest(http.MethodPost, "/addr", strings.NewReader(`{broken`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decodeError(t, rec).Code)

	rec = serve(router, httptest.NewRequest(http.MethodPost, "/addr",
		strings.NewReader(`{"country":"DE","currency":"EUR","quantity":2}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}
