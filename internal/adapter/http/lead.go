package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/leadiq/internal/app"
	"github.com/neomorfeo/leadiq/internal/domain"
)

// LeadResponse is the API representation of a lead.
type LeadResponse struct {
	ID          string `json:"id" doc:"Unique identifier"`
	TenantID    string `json:"tenant_id" doc:"Owning tenant"`
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	Company     string `json:"company,omitempty"`
	Title       string `json:"title,omitempty"`
	Source      string `json:"source,omitempty" doc:"Acquisition channel"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	Status      string `json:"status" doc:"Funnel state"`
	Score       int    `json:"score"`
	Version     int    `json:"version" doc:"Optimistic concurrency version"`
	CreatedAt   string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt   string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toLeadResponse(l *domain.Lead) LeadResponse {
	contact := l.Contact()
	utm := l.UTM()
	return LeadResponse{
		ID:          l.ID(),
		TenantID:    l.TenantID(),
		Email:       contact.Email,
		Name:        contact.Name,
		Company:     contact.Company,
		Title:       contact.Title,
		Source:      l.Source(),
		UTMSource:   utm.Source,
		UTMMedium:   utm.Medium,
		UTMCampaign: utm.Campaign,
		Status:      string(l.Status()),
		Score:       l.Score(),
		Version:     l.Version(),
		CreatedAt:   l.CreatedAt().Format(timeFormat),
		UpdatedAt:   l.UpdatedAt().Format(timeFormat),
	}
}

type CreateLeadInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	Body     struct {
		Email       string `json:"email" format:"email" doc:"Contact email"`
		Name        string `json:"name,omitempty" maxLength:"255"`
		Company     string `json:"company,omitempty" maxLength:"255"`
		Title       string `json:"title,omitempty" maxLength:"255"`
		Source      string `json:"source,omitempty" maxLength:"100" doc:"Acquisition channel"`
		UTMSource   string `json:"utm_source,omitempty" maxLength:"100"`
		UTMMedium   string `json:"utm_medium,omitempty" maxLength:"100"`
		UTMCampaign string `json:"utm_campaign,omitempty" maxLength:"100"`
	}
}

type LeadOutput struct {
	Body LeadResponse
}

type GetLeadInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Lead ID"`
}

type ListLeadsInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	Status   string `query:"status" required:"false" doc:"Filter by funnel state" enum:"new,contacted,qualified,converted,lost"`
	Limit    int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset   int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListLeadsOutput struct {
	Body []LeadResponse
}

type UpdateContactInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Lead ID"`
	Body     struct {
		Email   string `json:"email" format:"email" doc:"Contact email"`
		Name    string `json:"name,omitempty" maxLength:"255"`
		Company string `json:"company,omitempty" maxLength:"255"`
		Title   string `json:"title,omitempty" maxLength:"255"`
	}
}

type ScoreFactorsInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Lead ID"`
	Body     struct {
		CompanySize   string `json:"company_size" enum:"small,mid,enterprise"`
		BudgetCents   int64  `json:"budget_cents" minimum:"0"`
		DecisionMaker bool   `json:"decision_maker"`
	}
}

type MarkLostInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Lead ID"`
	Body     struct {
		Reason string `json:"reason,omitempty" maxLength:"500"`
	}
}

type ConvertLeadOutput struct {
	Body struct {
		Lead     LeadResponse     `json:"lead"`
		Customer CustomerResponse `json:"customer"`
	}
}

type DeleteLeadInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Lead ID"`
}

type DeleteOutput struct {
	Status int
}

func registerLeads(api huma.API, svc *app.LeadService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-lead",
		Method:        http.MethodPost,
		Path:          "/api/v1/leads",
		Summary:       "Create a new lead",
		DefaultStatus: http.StatusCreated,
		Tags:          []string{"Leads"},
	}, func(ctx context.Context, input *CreateLeadInput) (*LeadOutput, error) {
		lead, err := svc.Create(ctx, input.TenantID,
			domain.Contact{
				Email:   input.Body.Email,
				Name:    input.Body.Name,
				Company: input.Body.Company,
				Title:   input.Body.Title,
			},
			input.Body.Source,
			domain.UTMParams{
				Source:   input.Body.UTMSource,
				Medium:   input.Body.UTMMedium,
				Campaign: input.Body.UTMCampaign,
			},
		)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-lead",
		Method:      http.MethodGet,
		Path:        "/api/v1/leads/{id}",
		Summary:     "Get a lead by ID",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *GetLeadInput) (*LeadOutput, error) {
		lead, err := svc.GetByID(ctx, input.ID, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-leads",
		Method:      http.MethodGet,
		Path:        "/api/v1/leads",
		Summary:     "List leads",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *ListLeadsInput) (*ListLeadsOutput, error) {
		filter := domain.LeadFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Status != "" {
			s := domain.LeadStatus(input.Status)
			filter.Status = &s
		}

		leads, err := svc.List(ctx, input.TenantID, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]LeadResponse, len(leads))
		for i, l := range leads {
			resp[i] = toLeadResponse(l)
		}
		return &ListLeadsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-lead-contact",
		Method:      http.MethodPut,
		Path:        "/api/v1/leads/{id}/contact",
		Summary:     "Replace a lead's contact details",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *UpdateContactInput) (*LeadOutput, error) {
		lead, err := svc.UpdateContact(ctx, input.ID, input.TenantID, domain.Contact{
			Email:   input.Body.Email,
			Name:    input.Body.Name,
			Company: input.Body.Company,
			Title:   input.Body.Title,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-lead-score-factors",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/{id}/score-factors",
		Summary:     "Recompute the lead score from factors",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *ScoreFactorsInput) (*LeadOutput, error) {
		lead, err := svc.SetScoreFactors(ctx, input.ID, input.TenantID, domain.ScoreFactors{
			CompanySize:   domain.CompanySize(input.Body.CompanySize),
			BudgetCents:   input.Body.BudgetCents,
			DecisionMaker: input.Body.DecisionMaker,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "mark-lead-contacted",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/{id}/contacted",
		Summary:     "Record the first touch on a lead",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *GetLeadInput) (*LeadOutput, error) {
		lead, err := svc.MarkContacted(ctx, input.ID, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "qualify-lead",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/{id}/qualify",
		Summary:     "Qualify a lead",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *GetLeadInput) (*LeadOutput, error) {
		lead, err := svc.Qualify(ctx, input.ID, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "convert-lead",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/{id}/convert",
		Summary:     "Convert a qualified lead into a customer",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *GetLeadInput) (*ConvertLeadOutput, error) {
		lead, customer, err := svc.Convert(ctx, input.ID, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &ConvertLeadOutput{}
		out.Body.Lead = toLeadResponse(lead)
		out.Body.Customer = toCustomerResponse(customer)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "mark-lead-lost",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/{id}/lost",
		Summary:     "Close a lead as lost",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *MarkLostInput) (*LeadOutput, error) {
		lead, err := svc.MarkLost(ctx, input.ID, input.TenantID, input.Body.Reason)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-lead",
		Method:        http.MethodDelete,
		Path:          "/api/v1/leads/{id}",
		Summary:       "Delete a lead",
		DefaultStatus: http.StatusNoContent,
		Tags:          []string{"Leads"},
	}, func(ctx context.Context, input *DeleteLeadInput) (*DeleteOutput, error) {
		deleted, err := svc.Delete(ctx, input.ID, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		if !deleted {
			return nil, huma.Error404NotFound("not found")
		}
		return &DeleteOutput{Status: http.StatusNoContent}, nil
	})
}
