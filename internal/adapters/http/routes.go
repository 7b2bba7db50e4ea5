package web

import (
	"net/http"

	"advent/internal/adapters/http/middleware"
)

// registerRoutes wires every handler onto the mux. The auth middleware runs
// outside the mux, so handlers here only need the Require* guards.
func registerRoutes(mux *http.ServeMux) {
	// Public calendar
	mux.HandleFunc("/{$}", handleCalendar)
	mux.HandleFunc("/api/windows/open", handleOpenWindow)

	// Auth
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)

	// Admin surface
	mux.Handle("/admin", middleware.RequireAdmin(http.HandlerFunc(handleAdminHome)))
	mux.Handle("/admin/windows", middleware.RequireAdmin(http.HandlerFunc(handleAdminWindows)))
	mux.Handle("/admin/users", middleware.RequireAdmin(http.HandlerFunc(handleAdminUsers)))
	mux.Handle("/admin/users/delete", middleware.RequireAdmin(http.HandlerFunc(handleAdminDeleteUser)))
}
