package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"advent/internal/adapters/http/middleware"
	"advent/internal/application/orchestrators"
	"advent/internal/application/projections"
	"advent/internal/domain/openstate"
	userDomain "advent/internal/domain/user"
	windowDomain "advent/internal/domain/window"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in window messages is escaped (WithUnsafe is NOT set), so an admin
// typo cannot inject script into every viewer's calendar.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// userInputErrors and windowInputErrors are the domain failures an admin can
// fix by resubmitting the form. Anything outside these lists is a server
// fault and never reaches the client verbatim.
var userInputErrors = []error{
	userDomain.ErrEmptyUsername,
	userDomain.ErrUsernameTooShort,
	userDomain.ErrUsernameTooLong,
	userDomain.ErrInvalidRole,
	userDomain.ErrEmptyPassword,
	userDomain.ErrPasswordTooShort,
	orchestrators.ErrUsernameTaken,
}

var windowInputErrors = []error{
	windowDomain.ErrDayOutOfRange,
	windowDomain.ErrEmptyMessage,
	windowDomain.ErrMessageTooLong,
	windowDomain.ErrInvalidImageURL,
	windowDomain.ErrInvalidVideoURL,
	windowDomain.ErrInvalidState,
}

func isKnownInputError(err error, known []error) bool {
	for _, k := range known {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

const templatesDir = "internal/adapters/http/templates"

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	role := ""
	username := ""
	if ok {
		role = sess.Role
		username = sess.Username
	}

	funcMap := template.FuncMap{
		"currentRole":     func() string { return role },
		"currentUsername": func() string { return username },
		"isLoggedIn":      func() bool { return role != "" },
		"isAdmin":         func() bool { return role == userDomain.RoleAdmin },
		"csrfToken":       func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
	}
}

const openedCookieName = "advent_opened"

// openedFromRequest decodes the advisory opened-days cookie. A missing or
// malformed cookie is just an empty record.
func openedFromRequest(r *http.Request) *openstate.OpenedDays {
	cookie, err := r.Cookie(openedCookieName)
	if err != nil {
		return openstate.New()
	}
	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return openstate.New()
	}
	return openstate.Decode(raw)
}

// setOpenedCookie writes the advisory opened-days cookie. The JSON value is
// URL-escaped because cookie values cannot carry commas or brackets.
// Deliberately not httpOnly: the record carries no security meaning and
// client scripts may read it to animate the calendar.
func setOpenedCookie(w http.ResponseWriter, opened *openstate.OpenedDays) {
	http.SetCookie(w, &http.Cookie{
		Name:     openedCookieName,
		Value:    url.QueryEscape(opened.Encode()),
		HttpOnly: false,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 60, // covers the season
	})
}

// handleCalendar handles GET / — the public advent calendar.
func handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	views, err := projections.QueryCalendar(r.Context(), projections.CalendarQuery{
		Now:    timeNow(),
		Opened: openedFromRequest(r),
	}, projections.CalendarDeps{WindowStore: stores.WindowStore})
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "calendar.html", map[string]any{
			"Windows":   views,
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

// handleOpenWindow handles POST /api/windows/open — marks a day as revealed in
// the viewer's advisory cookie. Has no effect on unlock policy.
func handleOpenWindow(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	day, err := strconv.Atoi(r.FormValue("day"))
	if err != nil || day < windowDomain.FirstDay || day > windowDomain.LastDay {
		http.Error(w, "day must be between 1 and 24", http.StatusBadRequest)
		return
	}

	opened := openedFromRequest(r)
	opened.MarkOpened(day)
	setOpenedCookie(w, opened)

	// The calendar form posts here without JavaScript, so browser submits
	// go back to the calendar instead of seeing the JSON body.
	if isHTMLRequest(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"opened": opened.Encode()})
}

// handleLogin handles GET (form) and POST (authenticate) for /login.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// Already logged in: there is nothing to do here
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
			"Username":  "",
		})
		return
	}

	if r.Method == "POST" {
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		username := r.FormValue("Username")
		password := r.FormValue("Password")

		errs := map[string][]string{}
		if username == "" {
			errs["Username"] = append(errs["Username"], "Username is required")
		}
		if password == "" {
			errs["Password"] = append(errs["Password"], "Password is required")
		}
		if len(errs) > 0 {
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Errors":    errs,
				"Username":  username,
			})
			return
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
			Username: username,
			Password: password,
		}, orchestrators.LoginDeps{UserStore: stores.UserStore})
		if err != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     orchestrators.ErrInvalidCredentials.Error(),
				"Username":  username,
			})
			return
		}

		token, err := sessions.Create(result.UserID, result.Username, result.Role)
		if err != nil {
			internalError(w, err)
			return
		}

		middleware.SetSessionCookie(w, token)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogout handles POST /logout. Idempotent: logging out without an
// active session is fine.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie("advent_session")
	if err == nil {
		sessions.Delete(cookie.Value)
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleAdminHome handles GET /admin — the dashboard landing page.
func handleAdminHome(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	userCount, err := stores.UserStore.Count(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	windowCount, err := stores.WindowStore.Count(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "admin.html", map[string]any{
		"UserCount":   userCount,
		"WindowCount": windowCount,
	})
}

// handleAdminWindows handles both GET (list + edit forms) and POST (apply an
// edit) for /admin/windows.
func handleAdminWindows(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		windows, err := stores.WindowStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		if isHTMLRequest(r) {
			renderTemplate(w, r, "admin_windows.html", map[string]any{
				"Windows":   windows,
				"States":    []windowDomain.ManualState{windowDomain.StateDefault, windowDomain.StateUnlocked, windowDomain.StateLocked},
				"CSRFToken": csrf.Token(r),
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(windows)
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		day, err := strconv.Atoi(r.FormValue("Day"))
		if err != nil {
			http.Error(w, "day must be a number", http.StatusBadRequest)
			return
		}

		input := orchestrators.UpdateWindowInput{
			Day:         day,
			Message:     r.FormValue("Message"),
			ImageURL:    r.FormValue("ImageURL"),
			VideoURL:    r.FormValue("VideoURL"),
			ManualState: r.FormValue("ManualState"),
		}

		updated, err := orchestrators.ExecuteUpdateWindow(ctx, input, orchestrators.UpdateWindowDeps{
			WindowStore: stores.WindowStore,
		})
		if err != nil {
			var status int
			switch {
			case errors.Is(err, orchestrators.ErrWindowNotFound):
				status = http.StatusNotFound
			case isKnownInputError(err, windowInputErrors):
				status = http.StatusBadRequest
			default:
				internalError(w, err)
				return
			}
			if isHTMLRequest(r) {
				windows, listErr := stores.WindowStore.List(ctx)
				if listErr != nil {
					internalError(w, listErr)
					return
				}
				w.WriteHeader(status)
				renderTemplate(w, r, "admin_windows.html", map[string]any{
					"Windows":   windows,
					"States":    []windowDomain.ManualState{windowDomain.StateDefault, windowDomain.StateUnlocked, windowDomain.StateLocked},
					"CSRFToken": csrf.Token(r),
					"Error":     err.Error(),
					"ErrorDay":  day,
				})
				return
			}
			http.Error(w, err.Error(), status)
			return
		}

		if isHTMLRequest(r) {
			http.Redirect(w, r, "/admin/windows", http.StatusSeeOther)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleAdminUsers handles both GET (list) and POST (add) for /admin/users.
// Users created here always get the non-admin role.
func handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		views, err := projections.QueryUserList(ctx, projections.UserListDeps{UserStore: stores.UserStore})
		if err != nil {
			internalError(w, err)
			return
		}
		if isHTMLRequest(r) {
			renderTemplate(w, r, "admin_users.html", map[string]any{
				"Users":     views,
				"CSRFToken": csrf.Token(r),
				"Username":  "",
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(views)
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.CreateUserInput{
			Username: r.FormValue("Username"),
			Password: r.FormValue("Password"),
			Role:     userDomain.RoleUser,
		}

		deps := orchestrators.CreateUserDeps{UserStore: stores.UserStore}
		if wm := welcomeMailer(); wm != nil {
			deps.Welcome = wm
		}

		id, err := orchestrators.ExecuteCreateUser(ctx, input, deps)
		if err != nil {
			if !isKnownInputError(err, userInputErrors) {
				internalError(w, err)
				return
			}
			if isHTMLRequest(r) {
				views, listErr := projections.QueryUserList(ctx, projections.UserListDeps{UserStore: stores.UserStore})
				if listErr != nil {
					internalError(w, listErr)
					return
				}
				w.WriteHeader(http.StatusBadRequest)
				renderTemplate(w, r, "admin_users.html", map[string]any{
					"Users":     views,
					"CSRFToken": csrf.Token(r),
					"Error":     err.Error(),
					"Username":  input.Username,
				})
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if isHTMLRequest(r) {
			http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": id})
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleAdminDeleteUser handles POST /admin/users/delete.
func handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	id := r.FormValue("ID")
	err := orchestrators.ExecuteDeleteUser(r.Context(), id, orchestrators.DeleteUserDeps{UserStore: stores.UserStore})
	if err != nil {
		var status int
		switch {
		case errors.Is(err, orchestrators.ErrUserNotFound):
			status = http.StatusNotFound
		case errors.Is(err, userDomain.ErrDeleteAdmin):
			status = http.StatusForbidden
		default:
			internalError(w, err)
			return
		}
		if isHTMLRequest(r) {
			views, listErr := projections.QueryUserList(r.Context(), projections.UserListDeps{UserStore: stores.UserStore})
			if listErr != nil {
				internalError(w, listErr)
				return
			}
			w.WriteHeader(status)
			renderTemplate(w, r, "admin_users.html", map[string]any{
				"Users":     views,
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
				"Username":  "",
			})
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
