package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router registers every route. The metrics endpoint is only mounted when
// metricsEnabled is set.
func (h *Handlers) Router(metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")
	if metricsEnabled {
		r.Handle("/metrics", h.MetricsHandler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/directories", h.ListDirectories).Methods("GET")
	api.HandleFunc("/pictures", h.ListPictures).Methods("GET")
	api.HandleFunc("/pictures/{id}", h.GetPicture).Methods("GET")
	api.HandleFunc("/pictures/{id}/{field}", h.UpdatePicture).Methods("PUT")
	api.HandleFunc("/thumbnail/{id}", h.GetThumbnail).Methods("GET")
	api.HandleFunc("/preview/{id}", h.GetPreview).Methods("GET")
	api.HandleFunc("/import", h.Import).Methods("POST")
	api.HandleFunc("/add", h.AddDirectory).Methods("POST")
	api.HandleFunc("/thumbnails/sync", h.TriggerThumbnailSync).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, "Not found", http.StatusNotFound)
	})

	return r
}
