package models

import "strings"

// Address est l'adresse de livraison embarquée dans une commande.
type Address struct {
	Name       string `json:"name,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Line1      string `json:"address_line1" binding:"required"`
	Line2      string `json:"address_line2,omitempty"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"pincode" binding:"required"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// FullName retourne le nom du destinataire ou "" si aucun n'est renseigné.
func (a Address) FullName() string {
	if a.Name != "" {
		return a.Name
	}
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
