package usecase

import (
	"context"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

type ListLeadsUseCase struct {
	Repo entity.LeadRepositoryInterface
}

func NewListLeadsUseCase(repo entity.LeadRepositoryInterface) *ListLeadsUseCase {
	return &ListLeadsUseCase{Repo: repo}
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, filter entity.ListLeadsFilter) ([]*entity.Lead, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, &DomainError{Code: CodeValidation, Message: "Invalid status filter"}
	}
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)
	leads, err := uc.Repo.List(ctx, filter)
	if err != nil {
		return nil, storageError("failed to list leads", err)
	}
	return leads, nil
}
