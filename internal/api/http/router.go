package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return cors.Default().Handler(r)
}
