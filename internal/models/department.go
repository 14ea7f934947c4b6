// server/internal/models/department.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusPending là trạng thái khởi tạo của mọi bản ghi bộ phận.
const StatusPending = "pending"

// DocumentationDept theo dõi giấy tờ xuất khẩu (booking, halal, invoice...)
// cho một Order.
type DocumentationDept struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	BookingAirline      string              `bson:"booking_airline,omitempty" json:"booking_airline,omitempty"`
	BookingTime         string              `bson:"booking_time,omitempty" json:"booking_time,omitempty"`
	BookingLocation     string              `bson:"booking_location,omitempty" json:"booking_location,omitempty"`
	HalalCertificate    string              `bson:"halal_certificate,omitempty" json:"halal_certificate,omitempty"`
	DocCreationDate     *time.Time          `bson:"doc_creation_date,omitempty" json:"doc_creation_date,omitempty"`
	InvoiceGeneration   string              `bson:"invoice_generation,omitempty" json:"invoice_generation,omitempty"`
	CertificateOfOrigin string              `bson:"certificate_of_origin,omitempty" json:"certificate_of_origin,omitempty"`
	FormE               string              `bson:"form_e,omitempty" json:"form_e,omitempty"`
	DriverName          string              `bson:"driver_name,omitempty" json:"driver_name,omitempty"`
	Order               *primitive.ObjectID `bson:"order,omitempty" json:"order,omitempty"`
	Status              string              `bson:"status" json:"status"`
	CreatedAt           time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ProductionDept theo dõi khâu sản xuất (nhân lực, cấp đông, cân nặng...)
// cho một Order.
type ProductionDept struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ManPower            string              `bson:"man_power,omitempty" json:"man_power,omitempty"`
	ChillingCapacity    string              `bson:"chilling_capacity,omitempty" json:"chilling_capacity,omitempty"`
	Packaging           string              `bson:"packaging,omitempty" json:"packaging,omitempty"`
	VehicleAvailability bool                `bson:"vehicle_availability,omitempty" json:"vehicle_availability,omitempty"`
	VehicleInformation  string              `bson:"vehicle_information,omitempty" json:"vehicle_information,omitempty"`
	Time                *time.Time          `bson:"time,omitempty" json:"time,omitempty"`
	HotWeight           string              `bson:"hot_weight,omitempty" json:"hot_weight,omitempty"`
	LoadingWeight       string              `bson:"loading_weight,omitempty" json:"loading_weight,omitempty"`
	DocumentsWeight     string              `bson:"documents_weight,omitempty" json:"documents_weight,omitempty"`
	AirlineWeight       string              `bson:"airline_weight,omitempty" json:"airline_weight,omitempty"`
	CustomerWeight      string              `bson:"customer_weight,omitempty" json:"customer_weight,omitempty"`
	Order               *primitive.ObjectID `bson:"order,omitempty" json:"order,omitempty"`
	Status              string              `bson:"status" json:"status"`
	CreatedAt           time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// DocumentationDeptDetail là DocumentationDept với tham chiếu order đã
// resolve thành document đầy đủ.
type DocumentationDeptDetail struct {
	DocumentationDept `bson:",inline"`
	Order             *Order `bson:"-" json:"order,omitempty"`
}

// ProductionDeptDetail là ProductionDept với tham chiếu order đã resolve.
type ProductionDeptDetail struct {
	ProductionDept `bson:",inline"`
	Order          *Order `bson:"-" json:"order,omitempty"`
}

// QuarantineDept theo dõi khâu kiểm dịch cho một Order.
type QuarantineDept struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	DateOfQuarantine *time.Time          `bson:"date_of_quarantine,omitempty" json:"date_of_quarantine,omitempty"`
	ProofDoc         string              `bson:"proof_doc,omitempty" json:"proof_doc,omitempty"`
	Department       string              `bson:"department,omitempty" json:"department,omitempty"` // "govt" hoặc "private"
	Order            *primitive.ObjectID `bson:"order,omitempty" json:"order,omitempty"`
	Status           string              `bson:"status" json:"status"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// QuarantineDeptDetail là QuarantineDept với tham chiếu order đã resolve.
type QuarantineDeptDetail struct {
	QuarantineDept `bson:",inline"`
	Order          *Order `bson:"-" json:"order,omitempty"`
}
