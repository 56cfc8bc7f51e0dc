package auth

// LoginPath is where unauthenticated (or unmappable) users land.
const LoginPath = "/login"

// dashboardPaths is the single source of truth for where a signed-in user
// lands and where a wrong-role user gets redirected.
var dashboardPaths = map[Role]string{
	RoleDentist:      "/dentist",
	RoleReceptionist: "/receptionist",
	RoleCashier:      "/cashier",
	RoleInventory:    "/inventory",
	RoleAdmin:        "/admin",
	RolePatient:      "/patient",
}

var displayNames = map[Role]string{
	RoleDentist:      "Dentist",
	RoleReceptionist: "Receptionist",
	RoleCashier:      "Cashier",
	RoleInventory:    "Inventory",
	RoleAdmin:        "Admin",
	RolePatient:      "Patient",
}

// DashboardPath returns the dashboard base path for a role. It is total:
// unknown codes fail closed to the login path.
func DashboardPath(r Role) string {
	if p, ok := dashboardPaths[r]; ok {
		return p
	}
	return LoginPath
}

// DisplayName returns the human-readable role name, or empty for unknown codes.
func DisplayName(r Role) string {
	return displayNames[r]
}
