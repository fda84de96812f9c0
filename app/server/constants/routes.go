package constants

const (
	RouteHome           = "/"
	RouteLogin          = "/login"
	RouteDashboard      = "/dashboard"
	RouteAdminDashboard = "/admin/dashboard"
	RouteUsers          = "/admin/users"
	RouteRoles          = "/admin/roles"
	RouteUserAccounts   = "/stix/user-accounts"
	RouteIdentities     = "/stix/identities"
	RouteThreatActors   = "/stix/threat-actors"
	RoutePosts          = "/stix/posts"
	RouteVocabularies   = "/stix/vocabularies"
)

const DefaultPageLimit = 100
