package domain

// RouteScope selects which session namespace a route reads.
type RouteScope string

const (
	// ScopeAuto reads the admin namespace first for ADMIN routes and the
	// standard namespace first otherwise.
	ScopeAuto     RouteScope = ""
	ScopeStandard RouteScope = "standard"
	ScopeAdmin    RouteScope = "admin"
)

// Route declares a protected navigation target.
type Route struct {
	Path string
	// Require is the role needed to render; empty admits any live session.
	Require Role
	Scope   RouteScope
}

const (
	PathLogin             = "/login"
	PathAdminLogin        = "/admin/login"
	PathAdminDashboard    = "/admin/dashboard"
	PathEmployerDashboard = "/employer/dashboard"
	PathUserDashboard     = "/user/dashboard"
	PathJobs              = "/jobs"
)

const (
	MessageLoginRequired  = "Vui lòng đăng nhập để tiếp tục"
	MessageSessionExpired = "Phiên đăng nhập đã hết hạn, vui lòng đăng nhập lại"
	MessageAccessDenied   = "Bạn không có quyền truy cập trang này"
	MessageLoggedOut      = "Bạn đã đăng xuất"
)

// LandingPage is where a principal of role r is sent after a denial.
func LandingPage(r Role) string {
	switch CanonicalRole(string(r)) {
	case RoleAdmin:
		return PathAdminDashboard
	case RoleEmployer:
		return PathEmployerDashboard
	case RoleUser:
		return PathUserDashboard
	}
	return PathJobs
}

// ProtectedRoutes is the client's table of role-gated pages.
var ProtectedRoutes = []Route{
	{Path: PathUserDashboard, Require: RoleUser},
	{Path: "/user/profile", Require: RoleUser},
	{Path: "/user/saved-jobs", Require: RoleUser},
	{Path: "/user/applications", Require: RoleUser},
	{Path: PathEmployerDashboard, Require: RoleEmployer},
	{Path: "/employer/jobs", Require: RoleEmployer},
	{Path: "/employer/jobs/new", Require: RoleEmployer},
	{Path: "/employer/applications", Require: RoleEmployer},
	{Path: PathAdminDashboard, Require: RoleAdmin},
	{Path: "/admin/jobs", Require: RoleAdmin},
	{Path: "/admin/analytics", Require: RoleAdmin},
	{Path: "/notifications"},
}

// LookupRoute returns the declared route for path, or a route that admits
// any live session when path is not in the table.
func LookupRoute(path string) Route {
	for _, r := range ProtectedRoutes {
		if r.Path == path {
			return r
		}
	}
	return Route{Path: path}
}

// GuardState is the route guard's state for one navigation.
type GuardState string

const (
	GuardVerifying  GuardState = "verifying"
	GuardAllowed    GuardState = "allowed"
	GuardRedirected GuardState = "redirected"
)

// NavState travels with a redirect so the target can explain it and send
// the user back after login.
type NavState struct {
	From    string
	Message string
}

// Decision is the outcome of a guard check.
type Decision struct {
	State      GuardState
	Path       string
	RedirectTo string
	Nav        NavState
	Record     *SessionRecord
}

// Allowed reports whether protected content may render.
func (d Decision) Allowed() bool {
	return d.State == GuardAllowed
}
