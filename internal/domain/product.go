package domain

import (
	"time"
)

// Product representa um doce do catálogo da Fuwari Sweet Shop (a Entidade).
// Os campos de nome/descrição são localizados (inglês + japonês), pois a
// vitrine é bilíngue.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	NameJA        string    `json:"nameJa"`
	Description   string    `json:"description"`
	DescriptionJA string    `json:"descriptionJa"`
	Price         float64   `json:"price"`
	ImageURL      string    `json:"imageUrl"`
	Category      string    `json:"category"` // Ex: "wagashi", "cake", "seasonal"
	StockQuantity int       `json:"stockQuantity"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProductFilter define os parâmetros de busca e paginação do catálogo.
type ProductFilter struct {
	Page       int
	Limit      int
	Category   string
	ActiveOnly bool
}
