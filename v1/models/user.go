package models

import "strings"

// User represents a marketplace account
type User struct {
	ID                string    `gorm:"primaryKey;column:id;type:varchar(36)" bson:"_id" json:"id"`
	FirstName         string    `gorm:"column:first_name;type:varchar(255)" bson:"firstName" json:"firstName"`
	LastName          string    `gorm:"column:last_name;type:varchar(255)" bson:"lastName" json:"lastName"`
	Email             string    `gorm:"column:email;type:varchar(320);uniqueIndex;not null" bson:"email" json:"email"`
	Password          string    `gorm:"column:password;not null" bson:"password" json:"-"`
	Phone             string    `gorm:"column:phone;type:varchar(10);not null" bson:"phone" json:"phone"`
	ZipCode           string    `gorm:"column:zip_code;type:varchar(5);not null" bson:"zipCode" json:"zipCode"`
	Type              UserType  `gorm:"column:type;type:varchar(20);not null;index" bson:"type" json:"type"`
	NumberOfEmployees *int      `gorm:"column:number_of_employees" bson:"numberOfEmployees,omitempty" json:"numberOfEmployees,omitempty"`
	PlanType          *PlanType `gorm:"column:plan_type;type:varchar(20)" bson:"planType,omitempty" json:"planType,omitempty"`
	Role              Role      `gorm:"column:role;type:varchar(20);not null;default:user" bson:"role" json:"role"`
	BaseModel         `bson:",inline"`
}

// TableName sets the table name for User
func (User) TableName() string {
	return "users"
}

// IsAdmin checks if the account has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail canonicalizes an email for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserWithBidCount is the admin projection of a user annotated with bid activity
type UserWithBidCount struct {
	User
	BidCount int64 `json:"bidCount"`
}
