package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(
	topicHandler *TopicHandler,
	voteHandler *VoteHandler,
	statsHandler *StatsHandler,
	schoolHandler *SchoolHandler,
	jwtSecret []byte,
	cookieName string,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(IdentityMiddleware(jwtSecret, cookieName))

	r.Route("/api", func(r chi.Router) {
		r.Route("/topics", func(r chi.Router) {
			r.Post("/", topicHandler.CreateTopic)
			r.Get("/", topicHandler.ListTopics)
			r.Get("/{id}", topicHandler.GetTopic)
			r.Post("/{id}/votes", voteHandler.SubmitVote)
			r.Get("/{id}/my-vote", voteHandler.MyVote)
			r.Get("/{id}/region-stats", statsHandler.RegionStats)
		})

		r.Route("/votes", func(r chi.Router) {
			r.Post("/merge", voteHandler.MergeVotes)
		})

		r.Route("/schools", func(r chi.Router) {
			r.Get("/search", schoolHandler.SearchSchools)
		})
	})

	return r
}
