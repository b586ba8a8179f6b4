package catalog

import "deptbook/internal/domain"

type CreateResourceRequest struct {
	ID          string `json:"id,omitempty" validate:"omitempty,max=64"`
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Type        string `json:"type" validate:"required,oneof=room equipment"`
	Description string `json:"description" validate:"max=2000"`
	Capacity    int    `json:"capacity" validate:"required,gte=1,lte=1000"`
}

type UpdateResourceRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,notblank,max=100"`
	Type        *string `json:"type,omitempty" validate:"omitempty,oneof=room equipment"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Capacity    *int    `json:"capacity,omitempty" validate:"omitempty,gte=1,lte=1000"`
}

func (r UpdateResourceRequest) apply(res *domain.Resource) {
	if r.Name != nil {
		res.Name = *r.Name
	}
	if r.Type != nil {
		res.Type = domain.ResourceType(*r.Type)
	}
	if r.Description != nil {
		res.Description = *r.Description
	}
	if r.Capacity != nil {
		res.Capacity = *r.Capacity
	}
}
