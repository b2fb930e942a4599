package backend

import "fmt"

// Routes describes one REST path convention of the catalog backend.
type Routes struct {
	Name            string
	Categories      string
	Products        string
	AdminCategories string
	AdminProducts   string
	Login           string
	// LoginField names the identifier property in the login body.
	LoginField string
	// ServerSideFilter reports whether Products accepts category_id and q.
	ServerSideFilter bool
	// IncludeInactiveParam, when set, is sent empty on product lists so the
	// backend returns inactive rows too.
	IncludeInactiveParam string
	Health               string
}

// LegacyRoutes is the convention with /items and an /admin prefix for writes.
var LegacyRoutes = Routes{
	Name:             "legacy",
	Categories:       "/categories",
	Products:         "/items",
	AdminCategories:  "/admin/categories",
	AdminProducts:    "/admin/items",
	Login:            "/auth/login",
	LoginField:       "username",
	ServerSideFilter: true,
	Health:           "/test",
}

// APIRoutes is the /api convention. Reads and writes share a path and products
// are filtered by the caller.
var APIRoutes = Routes{
	Name:                 "api",
	Categories:           "/api/categories",
	Products:             "/api/products",
	AdminCategories:      "/api/categories",
	AdminProducts:        "/api/products",
	Login:                "/api/auth/login",
	LoginField:           "email",
	IncludeInactiveParam: "active",
	Health:               "/test",
}

// RoutesFor resolves an API_STYLE value.
func RoutesFor(style string) (Routes, error) {
	switch style {
	case "", LegacyRoutes.Name:
		return LegacyRoutes, nil
	case APIRoutes.Name:
		return APIRoutes, nil
	default:
		return Routes{}, fmt.Errorf("unknown api style %q", style)
	}
}
