package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/leadiq/internal/app"
	"github.com/neomorfeo/leadiq/internal/domain"
)

// CustomerResponse is the API representation of a customer account.
type CustomerResponse struct {
	ID                 string `json:"id" doc:"Unique identifier"`
	TenantID           string `json:"tenant_id" doc:"Owning tenant"`
	Email              string `json:"email"`
	Name               string `json:"name,omitempty"`
	Company            string `json:"company,omitempty"`
	Phone              string `json:"phone,omitempty"`
	Tier               string `json:"tier" doc:"Subscription tier"`
	LifetimeValueCents int64  `json:"lifetime_value_cents" doc:"Cumulative purchase value"`
	Version            int    `json:"version" doc:"Optimistic concurrency version"`
	CreatedAt          string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt          string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toCustomerResponse(c *domain.Customer) CustomerResponse {
	profile := c.Profile()
	return CustomerResponse{
		ID:                 c.ID(),
		TenantID:           c.TenantID(),
		Email:              profile.Email,
		Name:               profile.Name,
		Company:            profile.Company,
		Phone:              profile.Phone,
		Tier:               string(c.Tier()),
		LifetimeValueCents: c.LifetimeValueCents(),
		Version:            c.Version(),
		CreatedAt:          c.CreatedAt().Format(timeFormat),
		UpdatedAt:          c.UpdatedAt().Format(timeFormat),
	}
}

type CreateCustomerInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	Body     struct {
		Email   string `json:"email" format:"email" doc:"Account email"`
		Name    string `json:"name,omitempty" maxLength:"255"`
		Company string `json:"company,omitempty" maxLength:"255"`
		Phone   string `json:"phone,omitempty" maxLength:"50"`
		Tier    string `json:"tier,omitempty" enum:"free,starter,growth,enterprise" doc:"Initial tier, defaults to free"`
	}
}

type CustomerOutput struct {
	Body CustomerResponse
}

type GetCustomerInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Customer ID"`
}

type ListCustomersInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	Tier     string `query:"tier" required:"false" doc:"Filter by tier" enum:"free,starter,growth,enterprise"`
	Limit    int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset   int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListCustomersOutput struct {
	Body []CustomerResponse
}

type UpdateProfileInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Customer ID"`
	Body     struct {
		Email   string `json:"email" format:"email"`
		Name    string `json:"name,omitempty" maxLength:"255"`
		Company string `json:"company,omitempty" maxLength:"255"`
		Phone   string `json:"phone,omitempty" maxLength:"50"`
	}
}

type RecordPurchaseInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Customer ID"`
	Body     struct {
		AmountCents int64 `json:"amount_cents" minimum:"1" doc:"Purchase amount in cents"`
	}
}

type ChangeTierInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Customer ID"`
	Body     struct {
		Tier string `json:"tier" enum:"free,starter,growth,enterprise" doc:"Target tier"`
	}
}

type DeleteCustomerInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Customer ID"`
}

func registerCustomers(api huma.API, svc *app.CustomerService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-customer",
		Method:        http.MethodPost,
		Path:          "/api/v1/customers",
		Summary:       "Create a new customer",
		DefaultStatus: http.StatusCreated,
		Tags:          []string{"Customers"},
	}, func(ctx context.Context, input *CreateCustomerInput) (*CustomerOutput, error) {
		customer, err := svc.Create(ctx, input.TenantID,
			domain.Profile{
				Email:   input.Body.Email,
				Name:    input.Body.Name,
				Company: input.Body.Company,
				Phone:   input.Body.Phone,
			},
			domain.CustomerTier(input.Body.Tier),
		)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CustomerOutput{Body: toCustomerResponse(customer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-customer",
		Method:      http.MethodGet,
		Path:        "/api/v1/customers/{id}",
		Summary:     "Get a customer by ID",
		Tags:        []string{"Customers"},
	}, func(ctx context.Context, input *GetCustomerInput) (*CustomerOutput, error) {
		customer, err := svc.GetByID(ctx, input.ID, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CustomerOutput{Body: toCustomerResponse(customer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-customers",
		Method:      http.MethodGet,
		Path:        "/api/v1/customers",
		Summary:     "List customers",
		Tags:        []string{"Customers"},
	}, func(ctx context.Context, input *ListCustomersInput) (*ListCustomersOutput, error) {
		filter := domain.CustomerFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Tier != "" {
			t := domain.CustomerTier(input.Tier)
			filter.Tier = &t
		}

		customers, err := svc.List(ctx, input.TenantID, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]CustomerResponse, len(customers))
		for i, c := range customers {
			resp[i] = toCustomerResponse(c)
		}
		return &ListCustomersOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-customer-profile",
		Method:      http.MethodPut,
		Path:        "/api/v1/customers/{id}/profile",
		Summary:     "Replace a customer's profile",
		Tags:        []string{"Customers"},
	}, func(ctx context.Context, input *UpdateProfileInput) (*CustomerOutput, error) {
		customer, err := svc.UpdateProfile(ctx, input.ID, input.TenantID, domain.Profile{
			Email:   input.Body.Email,
			Name:    input.Body.Name,
			Company: input.Body.Company,
			Phone:   input.Body.Phone,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CustomerOutput{Body: toCustomerResponse(customer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "record-customer-purchase",
		Method:      http.MethodPost,
		Path:        "/api/v1/customers/{id}/purchases",
		Summary:     "Record a purchase against a customer",
		Tags:        []string{"Customers"},
	}, func(ctx context.Context, input *RecordPurchaseInput) (*CustomerOutput, error) {
		customer, err := svc.RecordPurchase(ctx, input.ID, input.TenantID, input.Body.AmountCents)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CustomerOutput{Body: toCustomerResponse(customer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-customer-tier",
		Method:      http.MethodPost,
		Path:        "/api/v1/customers/{id}/tier",
		Summary:     "Move a customer to a different tier",
		Tags:        []string{"Customers"},
	}, func(ctx context.Context, input *ChangeTierInput) (*CustomerOutput, error) {
		customer, err := svc.ChangeTier(ctx, input.ID, input.TenantID, domain.CustomerTier(input.Body.Tier))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CustomerOutput{Body: toCustomerResponse(customer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-customer",
		Method:        http.MethodDelete,
		Path:          "/api/v1/customers/{id}",
		Summary:       "Delete a customer",
		DefaultStatus: http.StatusNoContent,
		Tags:          []string{"Customers"},
	}, func(ctx context.Context, input *DeleteCustomerInput) (*DeleteOutput, error) {
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
