package delivery

import (
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func RegisterRoutes(r chi.Router, hStats *StatsHandler) {
	r.Route("/stats", func(pr chi.Router) {
		pr.Use(
			httputil.RecoverMiddleware,
			httprate.LimitByIP(60, time.Minute),
		)
		pr.Get("/system", hStats.GetSystemStats)
	})
}
