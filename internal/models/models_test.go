// server/internal/models/models_test.go
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserJSONNeverExposesSecrets(t *testing.T) {
	user := User{
		ID:       primitive.NewObjectID(),
		Name:     "Worker",
		Email:    "worker@example.com",
		Role:     RoleUser,
		Password: "c2VjcmV0aGFzaA==",
		Salt:     "c2FsdHNhbHQ=",
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotContains(t, out, "password")
	assert.NotContains(t, out, "salt")
	assert.Equal(t, "worker@example.com", out["email"])
}

func TestUserProfile(t *testing.T) {
	user := User{Name: "Worker", Role: "admin", Email: "w@example.com"}
	profile := user.Profile()
	assert.Equal(t, "Worker", profile.Name)
	assert.Equal(t, "admin", profile.Role)
}

func TestOrderDetailOverridesTeamRefs(t *testing.T) {
	docID := primitive.NewObjectID()
	order := Order{
		ID:                primitive.NewObjectID(),
		ProductType:       "beef",
		DocumentationTeam: &docID,
	}
	detail := OrderDetail{
		Order: order,
		DocumentationTeam: &DocumentationDept{
			ID:     docID,
			Status: StatusPending,
		},
	}

	raw, err := json.Marshal(detail)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	// Field ngoài (document đầy đủ) phải thắng field ObjectID bên trong
	team, ok := out["documentation_team"].(map[string]any)
	require.True(t, ok, "documentation_team should be an expanded object, got %T", out["documentation_team"])
	assert.Equal(t, StatusPending, team["status"])
	assert.Equal(t, "beef", out["product_type"])
}

func TestQuarantineDeptDetailExpandsOrder(t *testing.T) {
	orderID := primitive.NewObjectID()
	dept := QuarantineDept{
		ID:         primitive.NewObjectID(),
		Department: "govt",
		Order:      &orderID,
		Status:     StatusPending,
	}
	detail := QuarantineDeptDetail{
		QuarantineDept: dept,
		Order:          &Order{ID: orderID, ProductType: "mutton"},
	}

	raw, err := json.Marshal(detail)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	order, ok := out["order"].(map[string]any)
	require.True(t, ok, "order should be an expanded object, got %T", out["order"])
	assert.Equal(t, "mutton", order["product_type"])
	assert.Equal(t, orderID.Hex(), order["id"])
}

func TestDocumentationDeptDetailKeepsRefWhenUnresolved(t *testing.T) {
	orderID := primitive.NewObjectID()
	detail := DocumentationDeptDetail{
		DocumentationDept: DocumentationDept{
			ID:     primitive.NewObjectID(),
			Order:  &orderID,
			Status: StatusPending,
		},
	}

	raw, err := json.Marshal(detail)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	// Order đã bị xóa: field order bị lược bỏ thay vì trả về id treo
	_, present := out["order"]
	assert.False(t, present)
}

func TestStockDetailExpandsAnimals(t *testing.T) {
	stockID := primitive.NewObjectID()
	animal := Animal{
		ID:         primitive.NewObjectID(),
		StockID:    stockID,
		Type:       "goat",
		Tag:        "G-17",
		Weight:     2.5,
		WeightUnit: "maund",
		WeightInKg: 100,
	}
	detail := StockDetail{
		Stock:      Stock{ID: stockID, Name: "batch-1", AnimalsRef: []primitive.ObjectID{animal.ID}},
		AnimalsRef: []Animal{animal},
	}

	raw, err := json.Marshal(detail)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	animals, ok := out["animals_ref"].([]any)
	require.True(t, ok)
	require.Len(t, animals, 1)
	first := animals[0].(map[string]any)
	assert.Equal(t, "G-17", first["tag"])
	assert.Equal(t, stockID.Hex(), first["stock_id"])
}
