package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/rbac"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the request logger and CORS settings.
type RouterOptions struct {
	Version        string
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
	// GoogleEnabled mounts the Google sign-in routes.
	GoogleEnabled bool
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	authz *rbac.Authorizer,
	authHandler AuthHandler,
	employeeHandler EmployeeHandler,
	payrollHandler PayrollHandler,
	meHandler MeHandler,
	dashboardHandler DashboardHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-cmlabs"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	requirePerm := func(p user.Permission) func(next http.Handler) http.Handler {
		return middleware.RequirePermission(authz, p)
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)

			if opts.GoogleEnabled {
				r.Route("/oauth", func(r chi.Router) {
					r.Get("/google", authHandler.LoginWithGoogle)
					r.Get("/callback/google", authHandler.OAuthCallbackGoogle)
				})
			}

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired)

				r.Get("/me", authHandler.Me)
				r.Post("/me/employee", authHandler.LinkEmployee)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/employees", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(requirePerm(user.PermissionEmployeeViewAll))
					r.Get("/", employeeHandler.ListEmployees)
					r.Get("/export", employeeHandler.ExportEmployees)
					r.Get("/departments", employeeHandler.ListDepartments)
					r.Get("/{id}", employeeHandler.GetEmployee)
				})

				r.Group(func(r chi.Router) {
					r.Use(requirePerm(user.PermissionEmployeeManage))
					r.Post("/", employeeHandler.CreateEmployee)
					r.Put("/{id}", employeeHandler.UpdateEmployee)
					r.Delete("/{id}", employeeHandler.DeleteEmployee)
				})
			})

			r.Route("/me", func(r chi.Router) {
				r.With(requirePerm(user.PermissionViewOwnProfile)).Get("/profile", meHandler.GetProfile)
				r.With(requirePerm(user.PermissionEditOwnProfile)).Put("/profile", meHandler.UpdateProfile)
				r.With(requirePerm(user.PermissionViewOwnProfile)).Get("/team", meHandler.GetTeam)

				r.Group(func(r chi.Router) {
					r.Use(requirePerm(user.PermissionPayrollViewOwn))
					r.Get("/payrolls", meHandler.ListPayrolls)
					r.Get("/payrolls/{id}/payslip", meHandler.DownloadPayslip)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				// Preview only, nothing is stored
				r.Post("/calculate", payrollHandler.Calculate)

				r.Group(func(r chi.Router) {
					r.Use(requirePerm(user.PermissionPayrollViewAll))
					r.Get("/", payrollHandler.ListPayrollRecords)
					r.Get("/summary", payrollHandler.GetPayrollSummary)
					r.Get("/{id}", payrollHandler.GetPayrollRecord)
					r.Get("/{id}/payslip", payrollHandler.DownloadPayslip)
				})

				r.Group(func(r chi.Router) {
					r.Use(requirePerm(user.PermissionPayrollManage))
					r.Post("/", payrollHandler.CreatePayrollRecord)
					r.Post("/process", payrollHandler.ProcessPayroll)
					r.Put("/{id}", payrollHandler.UpdatePayrollRecord)
					r.Delete("/{id}", payrollHandler.DeletePayrollRecord)
					r.Post("/{id}/pay", payrollHandler.MarkPaid)
				})
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Use(requirePerm(user.PermissionDashboardAdmin))
					r.Get("/admin", dashboardHandler.GetAdminDashboard)
				})
				r.With(requirePerm(user.PermissionDashboardEmployee)).Get("/employee", dashboardHandler.GetEmployeeDashboard)
			})
		})
	})
	return r
}
