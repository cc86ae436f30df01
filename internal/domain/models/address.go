// internal/domain/models/address.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is one shipping address inside a user's address book.
type Address struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	FullName    string             `bson:"full_name" json:"fullName"`
	PhoneNumber string             `bson:"phone_number" json:"phoneNumber"`
	Province    string             `bson:"province" json:"province"`
	District    string             `bson:"district" json:"district"`
	Ward        string             `bson:"ward" json:"ward"`
	Street      string             `bson:"street" json:"street"`
}

// AddressBook holds every address of one user, in insertion order.
type AddressBook struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user"`
	Addresses []Address          `bson:"addresses" json:"addresses"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Find returns the index of the address with the given id, or -1.
func (b *AddressBook) Find(id primitive.ObjectID) int {
	for i, a := range b.Addresses {
		if a.ID == id {
			return i
		}
	}
	return -1
}
