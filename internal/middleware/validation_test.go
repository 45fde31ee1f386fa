package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLine struct {
	ProductID string          `json:"productId" validate:"required,uuid"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	SalePrice decimal.Decimal `json:"salePrice" validate:"gte=0"`
}

type testSaleRequest struct {
	Email    string     `json:"customerEmail" validate:"omitempty,email"`
	Status   string     `json:"repairStatus" validate:"omitempty,oneof=Pending Completed"`
	Products []testLine `json:"products" validate:"required,min=1,dive"`
}

func decodeTestRequest(t *testing.T, body string) error {
	t.Helper()
	req := httptest.NewRequest("POST", "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	var dst testSaleRequest
	return DecodeAndValidate(req, &dst)
}

// Feature: repair-desk, Property 15: Negative sale prices are rejected before any persistence
func TestProperty_DecimalFieldsAreRangeChecked(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("salePrice must be >= 0", prop.ForAll(
		func(cents int64) bool {
			body, _ := json.Marshal(map[string]interface{}{
				"products": []map[string]interface{}{{
					"productId": "6f1c1f3e-2b7e-4d7c-9d7e-0c6a4a3b2a10",
					"quantity":  1,
					"salePrice": decimal.New(cents, -2).String(),
				}},
			})
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(body))
			var dst testSaleRequest
			err := DecodeAndValidate(req, &dst)
			if cents >= 0 {
				return err == nil
			}
			return err != nil
		},
		gen.Int64Range(-100000, 100000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrors_UsesJSONPaths(t *testing.T) {
	err := decodeTestRequest(t, `{"products":[{"productId":"not-a-uuid","quantity":0,"salePrice":"1"}]}`)
	require.Error(t, err)

	formatted := FormatValidationErrors(err)
	fields := map[string]string{}
	for _, ve := range formatted {
		fields[ve.Field] = ve.Message
	}
	assert.Equal(t, "Invalid identifier", fields["products[0].productId"])
	assert.Equal(t, "Value must be greater than 0", fields["products[0].quantity"])
}

func TestFormatValidationErrors_Messages(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		want  string
	}{
		{"missing lines", `{}`, "products", "This field is required"},
		{"bad email", `{"customerEmail":"nope","products":[{"productId":"6f1c1f3e-2b7e-4d7c-9d7e-0c6a4a3b2a10","quantity":1,"salePrice":"1"}]}`, "customerEmail", "Invalid email format"},
		{"unknown status", `{"repairStatus":"Lost","products":[{"productId":"6f1c1f3e-2b7e-4d7c-9d7e-0c6a4a3b2a10","quantity":1,"salePrice":"1"}]}`, "repairStatus", "Must be one of: Pending Completed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeTestRequest(t, tt.body)
			require.Error(t, err)
			formatted := FormatValidationErrors(err)
			require.Len(t, formatted, 1)
			assert.Equal(t, tt.field, formatted[0].Field)
			assert.Equal(t, tt.want, formatted[0].Message)
		})
	}
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	err := decodeTestRequest(t, `{"products":`)
	require.Error(t, err)
	assert.Empty(t, FormatValidationErrors(err))
}
