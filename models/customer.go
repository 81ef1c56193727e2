package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/gestionsur/gestion_backend/config"
	"bitbucket.org/gestionsur/gestion_backend/utils"
)

type Customer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	TaxId     string    `gorm:"size:50" json:"tax_id"`
	Email     string    `gorm:"size:255" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c Customer) GetId() int {
	return c.ID
}

type NewCustomer struct {
	Name  string `json:"name" binding:"required"`
	TaxId string `json:"tax_id"`
	Email string `json:"email"`
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: customer name is required", utils.ErrorValidation)
	}

	customer := Customer{
		Name:  input.Name,
		TaxId: input.TaxId,
		Email: input.Email,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return utils.FetchModel[Customer](ctx, id)
}
