package models

// Bid is an offer by a user against a CPT listing's reserve
type Bid struct {
	ID            string    `gorm:"primaryKey;column:id;type:varchar(36)" bson:"_id" json:"id"`
	UserID        string    `gorm:"column:user_id;type:varchar(36);not null;index" bson:"userId" json:"userId"`
	CPTDataID     string    `gorm:"column:cpt_data_id;type:varchar(36);not null;index" bson:"cptDataId" json:"cptDataId"`
	BidAmount     float64   `gorm:"column:bid_amount;not null" bson:"bidAmount" json:"bidAmount"`
	Status        BidStatus `gorm:"column:status;type:varchar(20);not null;default:pending;index" bson:"status" json:"status"`
	AdminComments *string   `gorm:"column:admin_comments;type:text" bson:"adminComments,omitempty" json:"adminComments,omitempty"`
	BaseModel     `bson:",inline"`

	// Relationships
	User    *User       `gorm:"foreignKey:UserID;references:ID" bson:"-" json:"user,omitempty"`
	CPTData *CPTListing `gorm:"foreignKey:CPTDataID;references:ID" bson:"-" json:"cptData,omitempty"`
}

// TableName sets the table name for Bid
func (Bid) TableName() string {
	return "bids"
}

// IsOwnedBy checks whether the bid belongs to the given user
func (b *Bid) IsOwnedBy(userID string) bool {
	return b.UserID != "" && b.UserID == userID
}

// IsPending checks whether the bid can still be amended by its owner
func (b *Bid) IsPending() bool {
	return b.Status == BidStatusPending
}
