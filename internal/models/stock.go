// server/internal/models/stock.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stock là một lô gia súc nhập về, sở hữu danh sách bản ghi Animal
// qua animals_ref.
type Stock struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name       string               `bson:"name,omitempty" json:"name,omitempty"`
	Quantity   int                  `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Gate       string               `bson:"gate,omitempty" json:"gate,omitempty"`
	Vehicle    string               `bson:"vehicle,omitempty" json:"vehicle,omitempty"`
	Mandi      string               `bson:"mandi,omitempty" json:"mandi,omitempty"`
	ProcuredBy string               `bson:"procured_by,omitempty" json:"procured_by,omitempty"`
	GRN        string               `bson:"grn,omitempty" json:"grn,omitempty"`
	AnimalsRef []primitive.ObjectID `bson:"animals_ref,omitempty" json:"animals_ref,omitempty"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Animal thuộc về đúng một Stock qua stock_id.
type Animal struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StockID    primitive.ObjectID `bson:"stock_id,omitempty" json:"stock_id,omitempty"`
	Type       string             `bson:"type,omitempty" json:"type,omitempty"` // e.g., "goat", "cow"
	Tag        string             `bson:"tag,omitempty" json:"tag,omitempty"`
	WeightInKg float64            `bson:"weight_in_kg,omitempty" json:"weight_in_kg,omitempty"`
	Weight     float64            `bson:"weight,omitempty" json:"weight,omitempty"`
	WeightUnit string             `bson:"weight_unit,omitempty" json:"weight_unit,omitempty"` // e.g., "kg", "maund"
}

// StockDetail là Stock với animals_ref đã resolve thành danh sách Animal.
type StockDetail struct {
	Stock      `bson:",inline"`
	AnimalsRef []Animal `bson:"-" json:"animals_ref"`
}
