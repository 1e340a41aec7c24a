package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/kalindhi/kalindhi-api/internal/auth"
	"github.com/kalindhi/kalindhi-api/internal/handlers"
	"github.com/kalindhi/kalindhi-api/internal/middleware"
)

// Handlers groups every HTTP handler the API mounts. OAuth is nil when
// Google login is not configured.
type Handlers struct {
	Auth      *handlers.AuthHandler
	AdminAuth *handlers.AdminAuthHandler
	Admin     *handlers.AdminHandler
	Contact   *handlers.ContactHandler
	OAuth     *handlers.OAuthHandler
	Health    *handlers.HealthHandler
}

// Options configures route-level middleware
type Options struct {
	Tokens         auth.TokenValidator
	MainAdminEmail string
	AuthRateLimit  middleware.RateLimitConfig
}

// RegisterRoutes registers all application routes on router
func RegisterRoutes(router chi.Router, h Handlers, opts Options) {
	limited := middleware.RateLimitByIP(opts.AuthRateLimit)

	router.Get("/health", h.Health.Health)

	// Public routes - no authentication required
	router.With(limited).Post("/auth/signup", h.Auth.Signup)
	router.With(limited).Post("/auth/login", h.Auth.Login)
	router.With(limited).Post("/auth/verify-otp", h.Auth.VerifyOTP)
	router.With(limited).Post("/auth/resend-otp", h.Auth.ResendOTP)

	router.With(limited).Post("/admin/request-access", h.AdminAuth.RequestAccess)
	router.With(limited).Post("/admin/login", h.AdminAuth.Login)
	router.With(limited).Post("/admin/verify", h.AdminAuth.Verify)

	router.With(limited).Post("/contact", h.Contact.Submit)

	if h.OAuth != nil {
		router.Get("/auth/google", h.OAuth.Begin)
		router.Get("/auth/google/callback", h.OAuth.Callback)
	}

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(opts.Tokens))

		r.Get("/auth/profile", h.Auth.GetProfile)
		r.Put("/auth/profile", h.Auth.UpdateProfile)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Get("/admin/users", h.Admin.ListUsers)
			r.Delete("/admin/users/{id}", h.Admin.DeleteUser)

			r.Get("/admin/enquiries", h.Admin.ListEnquiries)
			r.Patch("/admin/enquiries/{id}/read", h.Admin.SetEnquiryRead)
			r.Patch("/admin/enquiries/{id}/archive", h.Admin.SetEnquiryArchived)
			r.Delete("/admin/enquiries/{id}", h.Admin.DeleteEnquiry)

			r.Post("/admin/uploads", h.Admin.Upload)

			// Main administrator only
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireMainAdmin(opts.MainAdminEmail))
				r.Get("/admin/admins", h.Admin.ListAdmins)
				r.Patch("/admin/admins/{id}/approve", h.Admin.ApproveAdmin)
				r.Delete("/admin/admins/{id}", h.Admin.DeleteAdmin)
			})
		})
	})
}
