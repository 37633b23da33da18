package models

import (
	"time"

	"github.com/google/uuid"
)

type Institution struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

type Department struct {
	ID            uuid.UUID `json:"id"`
	InstitutionID uuid.UUID `json:"institution_id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	CreatedAt     time.Time `json:"created_at"`
}
