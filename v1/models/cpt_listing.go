package models

// CPTListing is a procedure code offered in the marketplace with a seller-set reserve
type CPTListing struct {
	ID            string  `gorm:"primaryKey;column:id;type:varchar(36)" bson:"_id" json:"id" yaml:"-"`
	Specialty     string  `gorm:"column:specialty;type:varchar(255);not null" bson:"specialty" json:"specialty" yaml:"specialty"`
	CPTCode       string  `gorm:"column:cpt_code;type:varchar(20);uniqueIndex;not null" bson:"cptCode" json:"cptCode" yaml:"cptCode"`
	Description   string  `gorm:"column:description;type:text;not null" bson:"description" json:"description" yaml:"description"`
	County        string  `gorm:"column:county;type:varchar(255);not null" bson:"county" json:"county" yaml:"county"`
	State         string  `gorm:"column:state;type:varchar(2);not null" bson:"state" json:"state" yaml:"state"`
	ZipCode       string  `gorm:"column:zip_code;type:varchar(5);not null;index" bson:"zipCode" json:"zipCode" yaml:"zipCode"`
	AvgCharge     float64 `gorm:"column:avg_charge;not null" bson:"avgCharge" json:"avgCharge" yaml:"avgCharge"`
	MinCharge     float64 `gorm:"column:min_charge;not null" bson:"minCharge" json:"minCharge" yaml:"minCharge"`
	MaxCharge     float64 `gorm:"column:max_charge;not null" bson:"maxCharge" json:"maxCharge" yaml:"maxCharge"`
	ReserveAmount float64 `gorm:"column:reserve_amount;not null" bson:"reserveAmount" json:"reserveAmount" yaml:"reserveAmount"`
	BaseModel     `bson:",inline" yaml:"-"`
}

// TableName sets the table name for CPTListing
func (CPTListing) TableName() string {
	return "cpt_listings"
}
