package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/physiocare-api/internal/apperr"
	"github.com/harentsoaR/physiocare-api/internal/models"
	"github.com/harentsoaR/physiocare-api/internal/policy"
	"github.com/harentsoaR/physiocare-api/internal/store"
)

type PhysioInput struct {
	Name          string `json:"name"`
	Surname       string `json:"surname"`
	Specialty     string `json:"specialty"`
	LicenseNumber string `json:"licenseNumber"`
	Email         string `json:"email"`
	Image         string `json:"image"`
}

type PhysioPatch struct {
	ID            *string `json:"id"`
	MongoID       *string `json:"_id"`
	Name          *string `json:"name"`
	Surname       *string `json:"surname"`
	Specialty     *string `json:"specialty"`
	LicenseNumber *string `json:"licenseNumber"`
	Email         *string `json:"email"`
	Image         *string `json:"image"`
}

type PhysioService struct {
	physios store.PhysioStore
}

func NewPhysioService(st *store.Store) *PhysioService {
	return &PhysioService{physios: st.Physios}
}

func (s *PhysioService) List(ctx context.Context, who policy.Principal) ([]models.Physio, error) {
	return s.Search(ctx, who, store.PhysioFilter{})
}

// Search matches specialty, name and surname case-insensitively.
func (s *PhysioService) Search(ctx context.Context, who policy.Principal, f store.PhysioFilter) ([]models.Physio, error) {
	if err := authorize(ctx, who, policy.ReadPhysio, policy.Resource{}); err != nil {
		return nil, err
	}
	physios, err := s.physios.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("listing physios", err)
	}
	if len(physios) == 0 {
		return nil, apperr.NotFound("No physios found.")
	}
	return physios, nil
}

func (s *PhysioService) Get(ctx context.Context, who policy.Principal, rawID string) (*models.Physio, error) {
	if err := authorize(ctx, who, policy.ReadPhysio, policy.Resource{}); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "physio")
	if err != nil {
		return nil, err
	}
	p, err := s.physios.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "No physio found with that id.")
	}
	return p, nil
}

func (s *PhysioService) Create(ctx context.Context, who policy.Principal, in PhysioInput) (*models.Physio, error) {
	if err := authorize(ctx, who, policy.WritePhysio, policy.Resource{}); err != nil {
		return nil, err
	}
	if !models.IsSpecialty(in.Specialty) {
		return nil, apperr.Validation("Invalid specialty.", nil)
	}
	p := &models.Physio{
		Name:          in.Name,
		Surname:       in.Surname,
		Specialty:     in.Specialty,
		LicenseNumber: in.LicenseNumber,
		Email:         in.Email,
		Image:         in.Image,
	}
	if err := check("physio", p); err != nil {
		return nil, err
	}
	if err := s.physios.Create(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Validation("A physio with this license number or email already exists.", err)
		}
		return nil, apperr.Internal("inserting physio", err)
	}
	zerolog.Ctx(ctx).Info().Str("physio_id", p.ID.Hex()).Msg("physio created")
	return p, nil
}

func (s *PhysioService) Update(ctx context.Context, who policy.Principal, rawID string, patch PhysioPatch) (*models.Physio, error) {
	if err := authorize(ctx, who, policy.WritePhysio, policy.Resource{}); err != nil {
		return nil, err
	}
	if patch.Specialty != nil && !models.IsSpecialty(*patch.Specialty) {
		return nil, apperr.Validation("Invalid specialty.", nil)
	}
	id, err := parseID(rawID, "physio")
	if err != nil {
		return nil, err
	}
	for _, bodyID := range []*string{patch.ID, patch.MongoID} {
		if bodyID != nil && *bodyID != id.Hex() {
			return nil, apperr.Validation("The physio id cannot be changed.", nil)
		}
	}

	p, err := s.physios.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "The physio to update does not exist.")
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Name, patch.Name)
	set(&p.Surname, patch.Surname)
	set(&p.Specialty, patch.Specialty)
	set(&p.LicenseNumber, patch.LicenseNumber)
	set(&p.Email, patch.Email)
	set(&p.Image, patch.Image)

	if err := check("physio", p); err != nil {
		return nil, err
	}
	if err := s.physios.Replace(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Validation("A physio with this license number or email already exists.", err)
		}
		return nil, storeErr(err, "The physio to update does not exist.")
	}
	return p, nil
}

func (s *PhysioService) Delete(ctx context.Context, who policy.Principal, rawID string) (*models.Physio, error) {
	if err := authorize(ctx, who, policy.WritePhysio, policy.Resource{}); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "physio")
	if err != nil {
		return nil, err
	}
	p, err := s.physios.Delete(ctx, id)
	if err != nil {
		return nil, storeErr(err, "The physio to delete does not exist.")
	}
	zerolog.Ctx(ctx).Info().Str("physio_id", id.Hex()).Msg("physio deleted")
	return p, nil
}
