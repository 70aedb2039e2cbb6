package models

// Contact groups the optional reach-out fields shared by vendors and chefs.
type Contact struct {
	Phone   string
	Email   string
	Address string
}
