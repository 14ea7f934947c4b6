// server/internal/api/handlers/patch_test.go
package handlers

import (
	"testing"

	"meat-export-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApplyJSONPatchReplace(t *testing.T) {
	order := models.Order{
		ID:          primitive.NewObjectID(),
		ProductType: "beef",
		FlightName:  "EK-612",
	}

	patch := []byte(`[{"op":"replace","path":"/product_type","value":"mutton"}]`)
	updated, err := applyJSONPatch(order, patch)
	require.NoError(t, err)

	assert.Equal(t, "mutton", updated.ProductType)
	assert.Equal(t, "EK-612", updated.FlightName)
	// Document gốc không bị đụng tới
	assert.Equal(t, "beef", order.ProductType)
}

func TestApplyJSONPatchIdempotentReplace(t *testing.T) {
	dept := models.QuarantineDept{
		ID:     primitive.NewObjectID(),
		Status: models.StatusPending,
	}

	patch := []byte(`[{"op":"replace","path":"/status","value":"done"}]`)

	once, err := applyJSONPatch(dept, patch)
	require.NoError(t, err)
	twice, err := applyJSONPatch(once, patch)
	require.NoError(t, err)

	assert.Equal(t, once.Status, twice.Status)
	assert.Equal(t, "done", twice.Status)
}

func TestApplyJSONPatchAddAndRemove(t *testing.T) {
	dept := models.DocumentationDept{
		ID:             primitive.NewObjectID(),
		BookingAirline: "Emirates",
		DriverName:     "Rashid",
		Status:         models.StatusPending,
	}

	patch := []byte(`[
		{"op":"add","path":"/form_e","value":"FE-2291"},
		{"op":"remove","path":"/driver_name"}
	]`)
	updated, err := applyJSONPatch(dept, patch)
	require.NoError(t, err)

	assert.Equal(t, "FE-2291", updated.FormE)
	assert.Empty(t, updated.DriverName)
	assert.Equal(t, "Emirates", updated.BookingAirline)
}

func TestApplyJSONPatchInvalidOpAborts(t *testing.T) {
	stock := models.Stock{
		ID:   primitive.NewObjectID(),
		Name: "batch-7",
		Gate: "G2",
	}

	// Op thứ hai không hợp lệ: cả chuỗi phải bị hủy
	patch := []byte(`[
		{"op":"replace","path":"/name","value":"batch-8"},
		{"op":"replace","path":"/missing_field/nested","value":1}
	]`)
	_, err := applyJSONPatch(stock, patch)
	assert.Error(t, err)
	assert.Equal(t, "batch-7", stock.Name)
}

func TestApplyJSONPatchFailingTestAborts(t *testing.T) {
	order := models.Order{ID: primitive.NewObjectID(), ProductType: "beef"}

	patch := []byte(`[
		{"op":"test","path":"/product_type","value":"mutton"},
		{"op":"replace","path":"/product_type","value":"camel"}
	]`)
	_, err := applyJSONPatch(order, patch)
	assert.Error(t, err)
}

func TestApplyJSONPatchMalformedBody(t *testing.T) {
	order := models.Order{ID: primitive.NewObjectID()}

	_, err := applyJSONPatch(order, []byte(`{"op":"replace"}`))
	assert.Error(t, err)
}
