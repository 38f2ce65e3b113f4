package service

import (
	"context"

	"peymonak_backend/internal/model"
	"peymonak_backend/internal/repository"
)

type SupportService struct {
	Contacts *repository.SupportRepository
}

func NewSupportService(contacts *repository.SupportRepository) *SupportService {
	return &SupportService{Contacts: contacts}
}

func (s *SupportService) List(ctx context.Context) ([]model.SupportContact, error) {
	return s.Contacts.List(ctx)
}
