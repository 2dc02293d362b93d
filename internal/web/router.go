package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kasamhealthcare/clinic-web/internal/observability/metrics"
	"github.com/kasamhealthcare/clinic-web/pkg/logging"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	Logger         *logging.Logger
	Handler        *Handler
	WebMetrics     *metrics.WebMetrics
	MetricsHandler http.Handler
}

// NewRouter creates a chi router with all routes configured.
func NewRouter(cfg *RouterConfig) http.Handler {
	h := cfg.Handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(RequestLogger(cfg.Logger))
	}
	if cfg.WebMetrics != nil {
		r.Use(Metrics(cfg.WebMetrics))
	}
	r.Use(h.recoverer)
	r.Use(h.loadSession)

	// Public pages
	r.Get("/", h.Home)
	r.Get("/about", h.About)
	r.Get("/services", h.Services)
	r.Get("/contact", h.Contact)
	r.Post("/contact", h.ContactSubmit)
	r.Get("/privacy-policy", h.PrivacyPolicy)
	r.Get("/terms-of-service", h.TermsOfService)

	// Auth
	r.Get("/login", h.LoginPage)
	r.Get("/register", h.LoginPage) // alias; registration branches off OTP
	r.Post("/login/otp/send", h.SendOTP)
	r.Post("/login/otp/verify", h.VerifyOTP)
	r.Post("/login/password", h.PasswordLogin)
	r.Post("/logout", h.Logout)
	r.Get("/forgot-password", h.ForgotPasswordPage)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Get("/reset-password", h.ResetPasswordPage)
	r.Post("/reset-password", h.ResetPassword)

	// Authenticated pages
	r.Group(func(auth chi.Router) {
		auth.Use(h.requireUser)

		auth.Get("/dashboard", h.Dashboard)
		auth.Post("/dashboard/appointments/{id}/cancel", h.CancelAppointment)
		auth.Post("/dashboard/appointments/{id}/delete", h.DeleteAppointment)

		auth.Get("/profile", h.ProfilePage)
		auth.Post("/profile", h.ProfileUpdate)
		auth.Get("/profile/complete", h.ProfileCompletePage)
		auth.Post("/banner/dismiss", h.DismissBanner)

		auth.Route("/book", func(book chi.Router) {
			book.Get("/", h.BookPage)
			book.Post("/update", h.BookUpdate)
			book.Post("/date", h.BookDate)
			book.Post("/slot", h.BookSlot)
			book.Post("/next", h.BookNext)
			book.Post("/prev", h.BookPrev)
			book.Post("/submit", h.BookSubmit)
			book.Post("/reset", h.BookReset)
			book.Get("/reschedule/{id}", h.BookReschedule)
		})

		auth.Group(func(admin chi.Router) {
			admin.Use(h.requireStaff)
			admin.Get("/admin", h.AdminDashboard)
			admin.Post("/admin/appointments/{id}/approve", h.ApproveAppointment)
			admin.Post("/admin/appointments/{id}/reject", h.RejectAppointment)
			admin.Post("/admin/slots", h.CreateSlot)
			admin.Post("/admin/slots/{id}/delete", h.DeleteSlot)
			admin.Post("/admin/slots/generate", h.GenerateSlots)
		})
	})

	r.Handle("/static/*", StaticHandler())

	// Operational endpoints
	r.Get("/health", h.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.NotFound(h.NotFound)
	return r
}
