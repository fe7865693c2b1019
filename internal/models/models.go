package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"not null"                 json:"username"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	IsAdmin      bool   `gorm:"not null;default:false"   json:"isAdmin"`
}

type Product struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string  `gorm:"not null"                 json:"name"`
	Price     float64 `gorm:"not null"                 json:"price"`
	IsDeleted bool    `gorm:"not null;default:false"   json:"isDeleted"`
}

// Cart is the single active cart of a user; the unique index on UserID
// enforces one cart per user at the store level. Version is an optimistic
// concurrency token bumped on every mutation.
type Cart struct {
	ID              uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint       `gorm:"uniqueIndex;not null"     json:"userId"`
	Items           []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice      float64    `gorm:"not null;default:0"       json:"totalPrice"`
	PaymentIntentID string     `gorm:"index"                    json:"paymentIntentId,omitempty"`
	Version         uint       `gorm:"not null;default:0"       json:"-"`
}

// CartItem snapshots the product's name and price at the time it was added.
type CartItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	CartID    uint    `gorm:"index;not null"            json:"-"`
	ProductID uint    `gorm:"not null"                  json:"productId"`
	Name      string  `gorm:"not null"                  json:"name"`
	Price     float64 `gorm:"not null"                  json:"price"`
	Quantity  uint    `gorm:"not null;check:quantity>0" json:"quantity"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderPaid      OrderStatus = "Paid"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
)

type Order struct {
	ID              uint        `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID          uint        `gorm:"index;not null"            json:"userId"`
	Items           []OrderItem `gorm:"foreignKey:OrderID"        json:"items"`
	TotalPrice      float64     `gorm:"not null;default:0"        json:"totalPrice"`
	Status          OrderStatus `gorm:"not null;default:Pending"  json:"status"`
	PaymentIntentID string      `gorm:"index"                     json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

type OrderItem struct {
	ID        uint `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint `gorm:"index;not null"           json:"-"`
	ProductID uint `gorm:"not null"                 json:"productId"`
	Quantity  uint `gorm:"not null"                 json:"quantity"`
}
