package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.NotFound(h.NotFoundHandler)
	r.MethodNotAllowed(h.MethodNotAllowedHandler)

	r.Get("/health", h.HealthHandler)

	if h.opts.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.opts.UploadsDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/users", func(r chi.Router) {

		// public routes here
		r.Post("/register", h.RegisterUser)
		r.Post("/login", h.LoginUser)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Route("/me", func(r chi.Router) {
				r.Use(h.SelfTarget)

				r.Get("/", h.GetUser)
				r.Put("/", h.UpdateUser)
				r.Patch("/business", h.ChangeBusinessStatus)
			})

			r.With(h.RequireAdmin).Get("/", h.ListUsers)

			r.Route("/{id}", func(r chi.Router) {
				r.With(h.RequireSelfOrAdmin).Get("/", h.GetUser)
				r.With(h.RequireSelfOrAdmin).Put("/", h.UpdateUser)
				r.With(h.RequireSelfOrAdmin).Delete("/", h.DeleteUser)
				r.With(h.RequireAdmin).Patch("/business", h.ChangeBusinessStatus)
			})
		})
	})

	r.Route("/cards", func(r chi.Router) {

		// public routes here
		r.Get("/", h.ListCards)
		r.Get("/{id}", h.GetCard)

		// Secure routes, business and ownership rules are checked by the card service
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Get("/my-cards", h.MyCards)
			r.Post("/", h.CreateCard)
			r.Put("/{id}", h.UpdateCard)
			r.Patch("/{id}", h.LikeCard)
			r.Delete("/{id}", h.DeleteCard)
			r.Patch("/{id}/biz-number", h.ChangeBizNumber)
		})
	})
}
