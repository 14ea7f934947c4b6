// server/internal/models/order.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order là đơn hàng xuất khẩu thịt, đi qua 3 bộ phận (documentation,
// production, quarantine) sau khi được duyệt.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DateOfDelivery *time.Time         `bson:"date_of_delivery,omitempty" json:"date_of_delivery,omitempty"`
	ProductType    string             `bson:"product_type,omitempty" json:"product_type,omitempty"` // e.g., "beef", "mutton"
	ModeOfDelivery string             `bson:"mode_of_delivery,omitempty" json:"mode_of_delivery,omitempty"`
	Type           string             `bson:"type,omitempty" json:"type,omitempty"`
	Mode           string             `bson:"mode,omitempty" json:"mode,omitempty"`
	FlightName     string             `bson:"flight_name,omitempty" json:"flight_name,omitempty"`
	FlightDate     string             `bson:"flight_date,omitempty" json:"flight_date,omitempty"`
	CarcaseWeight  string             `bson:"carcase_weight,omitempty" json:"carcase_weight,omitempty"`
	IsApprove      bool               `bson:"isApprove" json:"isApprove"`

	// Tham chiếu tới 3 bản ghi bộ phận, chỉ được set bởi workflow approve.
	// Cả 3 hoặc cùng nil (đơn chưa duyệt) hoặc cùng trỏ về các bản ghi có
	// back-reference "order" bằng ID của đơn này.
	DocumentationTeam *primitive.ObjectID `bson:"documentation_team,omitempty" json:"documentation_team,omitempty"`
	ProductionTeam    *primitive.ObjectID `bson:"production_team,omitempty" json:"production_team,omitempty"`
	QuarantineTeam    *primitive.ObjectID `bson:"quarantine_team,omitempty" json:"quarantine_team,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OrderDetail là Order với 3 tham chiếu bộ phận đã được resolve thành
// document đầy đủ (tương đương populate). Field trùng tên ở ngoài sẽ
// ghi đè field ObjectID bên trong khi marshal JSON.
type OrderDetail struct {
	Order             `bson:",inline"`
	DocumentationTeam *DocumentationDept `bson:"-" json:"documentation_team,omitempty"`
	ProductionTeam    *ProductionDept    `bson:"-" json:"production_team,omitempty"`
	QuarantineTeam    *QuarantineDept    `bson:"-" json:"quarantine_team,omitempty"`
}
