// Package models holds the resource types shared by the storage,
// service and router layers, together with the sentinel errors
// the handlers classify failures with.
package models

import (
	"errors"
	"maps"
	"slices"
	"time"
)

// UserInput is the body accepted by create-user and update-user.
// Absent fields stay nil and are omitted from the JSON output.
type UserInput struct {
	Name  *string  `json:"name,omitempty"`
	Email *string  `json:"email,omitempty"`
	Age   *float64 `json:"age,omitempty"`
}

// User is a stored user record.
type User struct {
	ID int `json:"id"`
	UserInput
}

// Rating is one customer review attached to a product.
type Rating struct {
	Score    float64 `json:"score"`
	Comments string  `json:"comments"`
}

// ProductInput is the body accepted by create-product and replace-product.
// The validate tags describe the creation rules; they are only checked
// for operations that have a rule registered.
type ProductInput struct {
	Name           *string        `json:"name,omitempty" validate:"required,min=3,max=50"`
	Price          *float64       `json:"price,omitempty" validate:"required,gte=0.01"`
	Description    *string        `json:"description,omitempty"`
	Category       *string        `json:"category,omitempty" validate:"required,category"`
	Tags           []string       `json:"tags,omitempty" validate:"omitempty,min=1,max=5"`
	InStock        *float64       `json:"inStock,omitempty" validate:"omitempty,gte=0"`
	Specifications map[string]any `json:"specifications,omitempty"`
	Ratings        []Rating       `json:"ratings,omitempty"`
}

// Product is a stored product record.
type Product struct {
	ID int `json:"id"`
	ProductInput
}

// Clone returns a copy whose slices and top level map are not shared with p.
func (p Product) Clone() Product {
	p.Tags = slices.Clone(p.Tags)
	p.Ratings = slices.Clone(p.Ratings)
	p.Specifications = maps.Clone(p.Specifications)
	return p
}

// Hello is the v1 greeting.
type Hello struct {
	Message string `json:"message"`
}

// HelloV2 is the v2 greeting.
type HelloV2 struct {
	Message string    `json:"message"`
	Version string    `json:"version"`
	Date    time.Time `json:"date"`
}

// ProductIDPolicy selects how new product ids are assigned.
type ProductIDPolicy string

const (
	// ProductIDPolicyLength assigns len(products)+1. After a delete the
	// next id may equal the id of a product that is still stored.
	ProductIDPolicyLength ProductIDPolicy = "length"
	// ProductIDPolicySequence assigns ids from a counter that never goes back.
	ProductIDPolicySequence ProductIDPolicy = "sequence"
)

// Operation names a resource handler that receives a payload; validation
// rules are keyed by it.
type Operation string

const (
	OpCreateUser     Operation = "create-user"
	OpUpdateUser     Operation = "update-user"
	OpCreateProduct  Operation = "create-product"
	OpReplaceProduct Operation = "replace-product"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product payload")
	ErrInvalidUser     = errors.New("invalid user payload")
)

// Categories lists the accepted product categories. The `category`
// validate tag checks against it.
var Categories = []string{"Electronics", "Clothing", "Home", "Beauty"}
