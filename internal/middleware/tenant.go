package middleware

import (
	"context"
	"errors"
	"net"
	"strings"

	"agendly/internal/common"
	"agendly/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantResolver maps a request's Host header to a tenant slug. Resolution is
// pure and runs on every request; the slug is the only accepted source of
// tenant scope — identifiers in bodies or query strings are never trusted.
type TenantResolver struct {
	baseDomain string
}

func NewTenantResolver(baseDomain string) *TenantResolver {
	return &TenantResolver{baseDomain: strings.ToLower(baseDomain)}
}

// Resolve returns the tenant slug for a host, or "" when the host targets the
// platform surface. Only a single label in front of the base domain counts as
// a tenant; anything else (nested subdomains, unrelated hosts, hosts already
// stripped by a previous application) yields "", which makes Resolve
// idempotent under double application.
func (r *TenantResolver) Resolve(host string) string {
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)

	if host == r.baseDomain {
		return ""
	}
	suffix := "." + r.baseDomain
	if !strings.HasSuffix(host, suffix) {
		return ""
	}
	slug := strings.TrimSuffix(host, suffix)
	if slug == "" || strings.Contains(slug, ".") {
		return ""
	}
	return slug
}

// Middleware resolves the tenant once at the edge of the service and rejects
// the request before any scheduling logic when the host does not belong to an
// active tenant.
func (r *TenantResolver) Middleware(tenantSvc services.TenantService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			slug := r.Resolve(c.Request().Host)
			if slug == "" {
				return common.SendNotFoundError(c, "Tenant")
			}

			tenant, err := tenantSvc.GetActiveBySlug(c.Request().Context(), slug)
			if errors.Is(err, common.ErrTenantNotFound) {
				return common.SendNotFoundError(c, "Tenant")
			}
			if err != nil {
				return common.SendServerError(c, "Failed to resolve tenant")
			}

			ctx := context.WithValue(c.Request().Context(), common.TenantIDKey, tenant.ID)
			ctx = context.WithValue(ctx, common.TenantKey, tenant)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
