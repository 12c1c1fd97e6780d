package httpapi

import "net/http"

// route registers path with and without the trailing slash.
func route(mux *http.ServeMux, method, path string, h http.Handler) {
	mux.Handle(method+" "+path, h)
	mux.Handle(method+" "+path+"/{$}", h)
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}
	if !cfg.SwaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerAuthRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	route(mux, http.MethodPost, "/auth/register", http.HandlerFunc(handler.Register))
	route(mux, http.MethodPost, "/auth/login", http.HandlerFunc(handler.Login))
	route(mux, http.MethodPost, "/auth/refresh", http.HandlerFunc(handler.Refresh))
	route(mux, http.MethodGet, "/auth/profile", RequireAuth(verifier, http.HandlerFunc(handler.GetProfile)))
	route(mux, http.MethodPut, "/auth/profile", RequireAuth(verifier, http.HandlerFunc(handler.UpdateProfile)))
}

func registerDomainRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	authed := func(fn http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, fn)
	}

	route(mux, http.MethodGet, "/leagues", authed(handler.ListLeagues))
	route(mux, http.MethodPost, "/leagues", authed(handler.SyncLeagues))

	route(mux, http.MethodGet, "/teams", authed(handler.ListTeams))
	route(mux, http.MethodPost, "/teams", authed(handler.SyncTeams))

	route(mux, http.MethodGet, "/matches", authed(handler.ListMatches))
	route(mux, http.MethodPost, "/matches", authed(handler.SyncMatches))
	route(mux, http.MethodGet, "/matches/{fixture_id}", authed(handler.GetMatch))
	route(mux, http.MethodPut, "/matches/{fixture_id}", authed(handler.UpdateMatch))
	route(mux, http.MethodDelete, "/matches/{fixture_id}", authed(handler.DeleteMatch))

	route(mux, http.MethodGet, "/jornadas", authed(handler.ListJornadas))
	route(mux, http.MethodPost, "/jornadas", authed(handler.CreateJornada))
	route(mux, http.MethodPut, "/jornadas", authed(handler.UpdateJornada))
	route(mux, http.MethodDelete, "/jornadas", authed(handler.DeleteJornada))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	route(mux, http.MethodPost, "/assign-coins", RequireAuth(verifier, RequireStaff(http.HandlerFunc(handler.AssignCoins))))
}
