// Package http exposes the aggregate services over a Huma API. It is a
// thin translation layer: tenant identity arrives as an explicit header
// from the already-authenticated edge, and domain errors map to HTTP
// statuses here and nowhere else.
package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/leadiq/internal/app"
	"github.com/neomorfeo/leadiq/internal/domain"
)

const timeFormat = time.RFC3339

// Register adds all API routes to the Huma API.
func Register(api huma.API, leads *app.LeadService, customers *app.CustomerService, campaigns *app.CampaignService) {
	registerLeads(api, leads)
	registerCustomers(api, customers)
	registerCampaigns(api, campaigns)
}

// toHumaError translates domain errors to Huma HTTP errors.
//
// Tenant isolation violations deliberately come back as a generic 404:
// answering anything else would leak whether the id exists under another
// tenant.
func toHumaError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return huma.Error404NotFound("not found")
	}

	var isolation *domain.TenantIsolationError
	if errors.As(err, &isolation) {
		return huma.Error404NotFound("not found")
	}

	var rule *domain.BusinessRuleViolation
	if errors.As(err, &rule) {
		details := make([]error, 0, len(rule.Details))
		for field, value := range rule.Details {
			details = append(details, &huma.ErrorDetail{
				Message:  rule.Rule,
				Location: field,
				Value:    value,
			})
		}
		return huma.Error422UnprocessableEntity(rule.Error(), details...)
	}

	var conflict *domain.ConcurrencyError
	if errors.As(err, &conflict) {
		return huma.Error409Conflict(fmt.Sprintf(
			"%s was modified concurrently, re-read and retry (expected version %d)",
			conflict.AggregateType, conflict.ExpectedVersion))
	}

	return huma.Error500InternalServerError("internal server error")
}
