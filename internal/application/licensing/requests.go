package licensing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/domain"
	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

// RequestService solicitudes de prueba o activación de módulos.
type RequestService struct {
	requests repository.ModuleRequestRepository
	svc      *Service
	now      Clock
}

// NewRequestService construye el servicio de solicitudes.
func NewRequestService(requests repository.ModuleRequestRepository, svc *Service) *RequestService {
	return &RequestService{requests: requests, svc: svc, now: time.Now}
}

// Create registra una solicitud pendiente de la organización del usuario.
func (r *RequestService) Create(ctx context.Context, p Principal, in dto.CreateModuleRequestRequest) (*dto.ModuleRequestResponse, error) {
	code, err := ParseModule(in.ModuleCode)
	if err != nil {
		return nil, err
	}
	now := r.now()
	req := &entity.ModuleRequest{
		ID:             uuid.New().String(),
		OrganizationID: p.OrganizationID,
		RequestedByID:  p.UserID,
		ModuleCode:     code,
		RequestType:    in.RequestType,
		Justification:  in.Justification,
		ExpectedUsage:  in.ExpectedUsage,
		Status:         entity.RequestPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create module request: %w", err)
	}
	return toModuleRequestResponse(req), nil
}

// ListByOrganization solicitudes de una organización, más recientes primero.
func (r *RequestService) ListByOrganization(ctx context.Context, organizationID string) ([]dto.ModuleRequestResponse, error) {
	list, err := r.requests.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list module requests: %w", err)
	}
	return toModuleRequestResponses(list), nil
}

// ListPending solicitudes pendientes de todas las organizaciones.
func (r *RequestService) ListPending(ctx context.Context) ([]dto.ModuleRequestResponse, error) {
	list, err := r.requests.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending module requests: %w", err)
	}
	return toModuleRequestResponses(list), nil
}

// Review aprueba o rechaza una solicitud pendiente. Aprobar una solicitud
// trial inicia la prueba; activation/upgrade activan el módulo. Si la
// activación falla la solicitud queda pendiente.
func (r *RequestService) Review(ctx context.Context, id, reviewerID string, in dto.ReviewModuleRequestRequest) (*dto.ModuleRequestResponse, error) {
	req, err := r.requests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get module request: %w", err)
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if req.Status != entity.RequestPending {
		return nil, fmt.Errorf("%w: la solicitud ya fue revisada", domain.ErrConflict)
	}

	if in.Status == entity.RequestApproved {
		switch req.RequestType {
		case entity.RequestTypeTrial:
			_, err = r.svc.StartTrial(ctx, dto.StartTrialRequest{
				OrganizationID: req.OrganizationID,
				ModuleCode:     string(req.ModuleCode),
				UserID:         reviewerID,
				TrialDays:      in.TrialDays,
			})
		default:
			_, err = r.svc.Activate(ctx, dto.ActivateModuleRequest{
				OrganizationID: req.OrganizationID,
				ModuleCode:     string(req.ModuleCode),
				ExpiresAt:      in.ExpiresAt,
				ActivatedByID:  reviewerID,
			})
		}
		if err != nil {
			return nil, err
		}
	}

	now := r.now()
	req.Status = in.Status
	req.ReviewNotes = in.ReviewNotes
	req.ReviewedByID = &reviewerID
	req.ReviewedAt = &now
	req.UpdatedAt = now
	if err := r.requests.UpdateReview(ctx, req); err != nil {
		return nil, fmt.Errorf("update module request: %w", err)
	}
	return toModuleRequestResponse(req), nil
}

func toModuleRequestResponses(list []*entity.ModuleRequest) []dto.ModuleRequestResponse {
	out := make([]dto.ModuleRequestResponse, 0, len(list))
	for _, req := range list {
		out = append(out, *toModuleRequestResponse(req))
	}
	return out
}

func toModuleRequestResponse(req *entity.ModuleRequest) *dto.ModuleRequestResponse {
	return &dto.ModuleRequestResponse{
		ID:             req.ID,
		OrganizationID: req.OrganizationID,
		RequestedByID:  req.RequestedByID,
		ModuleCode:     string(req.ModuleCode),
		RequestType:    req.RequestType,
		Justification:  req.Justification,
		ExpectedUsage:  req.ExpectedUsage,
		Status:         req.Status,
		ReviewNotes:    req.ReviewNotes,
		ReviewedByID:   req.ReviewedByID,
		ReviewedAt:     req.ReviewedAt,
		CreatedAt:      req.CreatedAt,
	}
}
