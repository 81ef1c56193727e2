package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/gestionsur/gestion_backend/config"
	"bitbucket.org/gestionsur/gestion_backend/utils"
)

type Supplier struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	TaxId     string    `gorm:"size:50" json:"tax_id"`
	Email     string    `gorm:"size:255" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s Supplier) GetId() int {
	return s.ID
}

type NewSupplier struct {
	Name  string `json:"name" binding:"required"`
	TaxId string `json:"tax_id"`
	Email string `json:"email"`
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: supplier name is required", utils.ErrorValidation)
	}

	supplier := Supplier{
		Name:  input.Name,
		TaxId: input.TaxId,
		Email: input.Email,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return utils.FetchModel[Supplier](ctx, id)
}
