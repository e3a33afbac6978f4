package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/leadiq/internal/app"
	"github.com/neomorfeo/leadiq/internal/domain"
)

// CampaignResponse is the API representation of a campaign.
type CampaignResponse struct {
	ID               string `json:"id" doc:"Unique identifier"`
	TenantID         string `json:"tenant_id" doc:"Owning tenant"`
	Name             string `json:"name"`
	Type             string `json:"type" doc:"Channel the campaign runs on"`
	Objective        string `json:"objective,omitempty"`
	BudgetTotalCents int64  `json:"budget_total_cents"`
	BudgetDailyCents int64  `json:"budget_daily_cents,omitempty"`
	StartsAt         string `json:"starts_at" doc:"Run window start (ISO 8601)"`
	EndsAt           string `json:"ends_at" doc:"Run window end (ISO 8601)"`
	Status           string `json:"status" doc:"Lifecycle state"`
	SpendCents       int64  `json:"spend_cents" doc:"Spend recorded so far"`
	Version          int    `json:"version" doc:"Optimistic concurrency version"`
	CreatedAt        string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt        string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toCampaignResponse(c *domain.Campaign) CampaignResponse {
	budget := c.Budget()
	schedule := c.Schedule()
	return CampaignResponse{
		ID:               c.ID(),
		TenantID:         c.TenantID(),
		Name:             c.Name(),
		Type:             string(c.Type()),
		Objective:        c.Objective(),
		BudgetTotalCents: budget.TotalCents,
		BudgetDailyCents: budget.DailyCents,
		StartsAt:         schedule.StartsAt.Format(timeFormat),
		EndsAt:           schedule.EndsAt.Format(timeFormat),
		Status:           string(c.Status()),
		SpendCents:       c.SpendCents(),
		Version:          c.Version(),
		CreatedAt:        c.CreatedAt().Format(timeFormat),
		UpdatedAt:        c.UpdatedAt().Format(timeFormat),
	}
}

type CreateCampaignInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	Body     struct {
		Name             string    `json:"name" minLength:"1" maxLength:"255"`
		Type             string    `json:"type" enum:"email,social,search,display" doc:"Channel the campaign runs on"`
		Objective        string    `json:"objective,omitempty" maxLength:"500"`
		BudgetTotalCents int64     `json:"budget_total_cents" minimum:"1"`
		BudgetDailyCents int64     `json:"budget_daily_cents,omitempty" minimum:"0"`
		StartsAt         time.Time `json:"starts_at" doc:"Run window start"`
		EndsAt           time.Time `json:"ends_at" doc:"Run window end"`
	}
}

type CampaignOutput struct {
	Body CampaignResponse
}

type GetCampaignInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Campaign ID"`
}

type ListCampaignsInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	Status   string `query:"status" required:"false" doc:"Filter by lifecycle state" enum:"draft,scheduled,active,paused,completed,cancelled"`
	Limit    int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset   int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListCampaignsOutput struct {
	Body []CampaignResponse
}

type CampaignTriggerInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Campaign ID"`
	Body     struct {
		Trigger string `json:"trigger" enum:"schedule,activate,pause,resume,complete,cancel" doc:"Lifecycle action"`
	}
}

type RecordSpendInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Campaign ID"`
	Body     struct {
		AmountCents int64 `json:"amount_cents" minimum:"1" doc:"Spend amount in cents"`
	}
}

type RescheduleInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Campaign ID"`
	Body     struct {
		StartsAt time.Time `json:"starts_at" doc:"New run window start"`
		EndsAt   time.Time `json:"ends_at" doc:"New run window end"`
	}
}

type DeleteCampaignInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Campaign ID"`
}

func registerCampaigns(api huma.API, svc *app.CampaignService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-campaign",
		Method:        http.MethodPost,
		Path:          "/api/v1/campaigns",
		Summary:       "Create a new draft campaign",
		DefaultStatus: http.StatusCreated,
		Tags:          []string{"Campaigns"},
	}, func(ctx context.Context, input *CreateCampaignInput) (*CampaignOutput, error) {
		campaign, err := svc.Create(ctx, input.TenantID,
			input.Body.Name,
			domain.CampaignType(input.Body.Type),
			input.Body.Objective,
			domain.Budget{
				TotalCents: input.Body.BudgetTotalCents,
				DailyCents: input.Body.BudgetDailyCents,
			},
			domain.Schedule{
				StartsAt: input.Body.StartsAt,
				EndsAt:   input.Body.EndsAt,
			},
		)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CampaignOutput{Body: toCampaignResponse(campaign)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-campaign",
		Method:      http.MethodGet,
		Path:        "/api/v1/campaigns/{id}",
		Summary:     "Get a campaign by ID",
		Tags:        []string{"Campaigns"},
	}, func(ctx context.Context, input *GetCampaignInput) (*CampaignOutput, error) {
		campaign, err := svc.GetByID(ctx, input.ID, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CampaignOutput{Body: toCampaignResponse(campaign)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-campaigns",
		Method:      http.MethodGet,
		Path:        "/api/v1/campaigns",
		Summary:     "List campaigns",
		Tags:        []string{"Campaigns"},
	}, func(ctx context.Context, input *ListCampaignsInput) (*ListCampaignsOutput, error) {
		filter := domain.CampaignFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Status != "" {
			s := domain.CampaignStatus(input.Status)
			filter.Status = &s
		}

		campaigns, err := svc.List(ctx, input.TenantID, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]CampaignResponse, len(campaigns))
		for i, c := range campaigns {
			resp[i] = toCampaignResponse(c)
		}
		return &ListCampaignsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "trigger-campaign",
		Method:      http.MethodPost,
		Path:        "/api/v1/campaigns/{id}/trigger",
		Summary:     "Apply a lifecycle trigger to a campaign",
		Tags:        []string{"Campaigns"},
	}, func(ctx context.Context, input *CampaignTriggerInput) (*CampaignOutput, error) {
		campaign, err := svc.ApplyTrigger(ctx, input.ID, input.TenantID, domain.CampaignTrigger(input.Body.Trigger))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CampaignOutput{Body: toCampaignResponse(campaign)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "record-campaign-spend",
		Method:      http.MethodPost,
		Path:        "/api/v1/campaigns/{id}/spend",
		Summary:     "Record spend against an active campaign",
		Tags:        []string{"Campaigns"},
	}, func(ctx context.Context, input *RecordSpendInput) (*CampaignOutput, error) {
		campaign, err := svc.RecordSpend(ctx, input.ID, input.TenantID, input.Body.AmountCents)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CampaignOutput{Body: toCampaignResponse(campaign)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reschedule-campaign",
		Method:      http.MethodPut,
		Path:        "/api/v1/campaigns/{id}/schedule",
		Summary:     "Replace the run window of a campaign",
		Tags:        []string{"Campaigns"},
	}, func(ctx context.Context, input *RescheduleInput) (*CampaignOutput, error) {
		campaign, err := svc.Reschedule(ctx, input.ID, input.TenantID, domain.Schedule{
			StartsAt: input.Body.StartsAt,
			EndsAt:   input.Body.EndsAt,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CampaignOutput{Body: toCampaignResponse(campaign)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-campaign",
		Method:        http.MethodDelete,
		Path:          "/api/v1/campaigns/{id}",
		Summary:       "Delete a campaign",
		DefaultStatus: http.StatusNoContent,
		Tags:          []string{"Campaigns"},
	}, func(ctx context.Context, input *DeleteCampaignInput) (*DeleteOutput, error) {
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
