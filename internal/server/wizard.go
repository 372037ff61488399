package server

import (
	"crypto/sha1"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/pbkdf2"

	"tidewatch/internal/config"
	"tidewatch/internal/sensor"
)

//go:embed static
var content embed.FS

const (
	sessionName    = "tidewatch-setup"
	sessionKind    = "setup-kind"
	sessionStation = "setup-station"

	// Setup sessions only need to survive the flow itself.
	defaultMaxAge = 60 * 60 // one hour in seconds
)

var store = &sessions.CookieStore{
	Codecs: securecookie.CodecsFromPairs(
		getSessionKey(),
		getEncryptionKey(),
	),
	Options: &sessions.Options{
		Path:     "/",
		MaxAge:   defaultMaxAge,
		HttpOnly: true,
	},
}

func init() {
	store.MaxAge(defaultMaxAge)
}

// registerSetup installs the three-step station setup flow: pick a kind,
// pick a station, confirm presentation options. Progress between steps rides
// in an encrypted session cookie.
func (s *Server) registerSetup(r *mux.Router) {
	r.Handle("/setup", s.makeSetupKind())
	r.Handle("/setup/station", s.makeSetupStation())
	r.Handle("/setup/confirm", s.makeSetupConfirm())
}

func (s *Server) makeSetupKind() http.HandlerFunc {
	kindTemplate := template.Must(template.ParseFS(content, "static/setup_kind.template.html"))

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			renderTemplate(w, s.Logger, kindTemplate, map[string]any{})
			return
		}

		kind := config.Kind(r.PostFormValue("kind"))
		if !kind.Valid() {
			renderTemplate(w, s.Logger, kindTemplate, map[string]any{
				"Error": config.CodeUnknown.Message(),
			})
			return
		}

		session, _ := store.Get(r, sessionName)
		session.Values[sessionKind] = string(kind)
		delete(session.Values, sessionStation)
		if err := session.Save(r, w); err != nil {
			s.Logger.Warn("save setup session", "error", err)
		}
		http.Redirect(w, r, "setup/station", http.StatusFound)
	}
}

func (s *Server) makeSetupStation() http.HandlerFunc {
	stationTemplate := template.Must(template.ParseFS(content, "static/setup_station.template.html"))

	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := store.Get(r, sessionName)
		kindVal, ok := session.Values[sessionKind].(string)
		if !ok {
			http.Redirect(w, r, "../setup", http.StatusFound)
			return
		}
		kind := config.Kind(kindVal)

		input := map[string]any{
			"Kind":  kind,
			"Buoy":  kind == config.Buoy,
			"State": r.FormValue("state"),
		}

		render := func(errMsg string) {
			input["Error"] = errMsg
			if kind != config.Buoy {
				if states, err := s.Directory.States(r.Context()); err == nil {
					input["States"] = states
				} else {
					s.Logger.Error("list states", "error", err)
					input["Error"] = config.CodeCannotConnect.Message()
				}
				if state := r.FormValue("state"); state != "" {
					if list, err := s.Directory.ByState(r.Context(), state); err == nil {
						input["Stations"] = list
					}
				}
			}
			renderTemplate(w, s.Logger, stationTemplate, input)
		}

		if r.Method != http.MethodPost {
			render("")
			return
		}

		e := config.Entry{
			StationID: r.PostFormValue("station_id"),
			Kind:      kind,
		}
		if code := s.Validator.Validate(r.Context(), &e); code != config.CodeOK {
			render(code.Message())
			return
		}

		session.Values[sessionStation] = e.StationID
		if err := session.Save(r, w); err != nil {
			s.Logger.Warn("save setup session", "error", err)
		}
		http.Redirect(w, r, "confirm", http.StatusFound)
	}
}

func (s *Server) makeSetupConfirm() http.HandlerFunc {
	confirmTemplate := template.Must(template.ParseFS(content, "static/setup_confirm.template.html"))

	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := store.Get(r, sessionName)
		kindVal, okKind := session.Values[sessionKind].(string)
		stationID, okStation := session.Values[sessionStation].(string)
		if !okKind || !okStation {
			http.Redirect(w, r, "../setup", http.StatusFound)
			return
		}

		input := map[string]any{
			"Kind":            kindVal,
			"StationID":       stationID,
			"DefaultName":     config.DefaultName,
			"DefaultTimeZone": config.DefaultTimeZone,
			"DefaultUnits":    config.DefaultUnits,
		}

		if r.Method != http.MethodPost {
			renderTemplate(w, s.Logger, confirmTemplate, input)
			return
		}

		e := config.Entry{
			StationID: stationID,
			Kind:      config.Kind(kindVal),
			Name:      r.PostFormValue("name"),
			TimeZone:  r.PostFormValue("time_zone"),
			Units:     r.PostFormValue("units"),
		}
		// Validation reruns here to refill coordinates and catch an entry
		// configured from another tab since the previous step.
		if code := s.Validator.Validate(r.Context(), &e); code != config.CodeOK {
			input["Error"] = code.Message()
			renderTemplate(w, s.Logger, confirmTemplate, input)
			return
		}

		if err := s.Register(e); err != nil {
			s.Logger.Error("register entry", "entry", e.ID(), "error", err)
			input["Error"] = config.CodeUnknown.Message()
			renderTemplate(w, s.Logger, confirmTemplate, input)
			return
		}

		delete(session.Values, sessionKind)
		delete(session.Values, sessionStation)
		if err := session.Save(r, w); err != nil {
			s.Logger.Warn("save setup session", "error", err)
		}
		http.Redirect(w, r, "../", http.StatusFound)
	}
}

func (s *Server) makeIndex() http.Handler {
	indexTemplate := template.Must(template.ParseFS(content, "static/index.template.html"))

	type entryView struct {
		Entry   config.Entry
		ID      string
		Sensors []sensor.State
		Chart   bool
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var views []entryView
		for _, e := range s.Manager.Entries() {
			v := entryView{
				Entry: e,
				ID:    e.ID(),
				Chart: e.Kind == config.Tides,
			}
			if c, ok := s.Manager.Coordinator(e.ID()); ok {
				v.Sensors = c.States()
			}
			views = append(views, v)
		}
		renderTemplate(w, s.Logger, indexTemplate, map[string]any{"Entries": views})
	})
}

func renderTemplate(w http.ResponseWriter, logger *slog.Logger, t *template.Template, data any) {
	w.Header().Add("Content-Type", "text/html")
	if err := t.Execute(w, data); err != nil {
		logger.Error("execute template", "template", t.Name(), "error", err)
	}
}

// getSessionKey returns the cookie authentication key from the environment,
// with a compile-time default for local development.
func getSessionKey() []byte {
	defaultKey := []byte("ebbandflow")
	if key := os.Getenv("SESSION_KEY"); key != "" {
		return []byte(key)
	}
	return defaultKey
}

func getEncryptionKey() []byte {
	password := "ebbandflow"
	if fromEnv := os.Getenv("ENCRYPTION_KEY"); fromEnv != "" {
		password = fromEnv
	}
	return pbkdf2.Key([]byte(password), []byte{}, 4096, 32, sha1.New)
}
