package server

const (
	RouteHealth       = "/health"
	RouteCreateTenant = "/create-tenant"
	RouteRegister     = "/register"
	RouteLogin        = "/login"
	RouteMe           = "/me"

	RouteAdminUsers  = "/admin/users"
	RouteAdminUser   = "/admin/users/{user_id}"
	RouteTenantUsers = "/tenants/{tenant_id}/users"

	RouteMessages       = "/messages"
	RouteMessagesStream = "/messages/stream"

	RouteFederatedLogin    = "/auth/federated/login"
	RouteFederatedCallback = "/auth/federated/callback"
)
