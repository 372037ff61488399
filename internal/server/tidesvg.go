package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"tidewatch/internal/visualize"
	"tidewatch/pkg/cache"
	"tidewatch/pkg/coops"
	"tidewatch/pkg/sunset"
)

// makeTideSVG serves a one-day tide chart for a station. Charts are built
// from fresh predictions, not the poll snapshot, so any directory station
// can be charted. Rendered bytes are cached.
func (s *Server) makeTideSVG() http.Handler {
	svgCache := cache.NewTimed[[]byte](svgCacheTTL)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		station := mux.Vars(r)["station"]

		if cached, ok := svgCache.Get(station); ok {
			w.Header().Add("Content-Type", "image/svg+xml")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}

		now := time.Now()
		// Pad a day on each side so the chart's curves reach the edges.
		preds, err := s.COOPS.GetPredictions(r.Context(), &coops.Query{
			Station: station,
			Start:   now.Add(-day),
			End:     now.Add(2 * day),
		})
		if err != nil {
			s.Logger.Error("fetch predictions for chart", "station", station, "error", err)
			http.Error(w, fmt.Sprintf("failed to fetch predictions: %v", err), http.StatusBadGateway)
			return
		}

		place := sunset.Place{}
		if rec, found, err := s.Directory.Lookup(r.Context(), station); err == nil && found {
			place = sunset.Place{Lat: rec.Lat, Long: rec.Lng}
		}
		sunEvents := sunset.GetSunEvents(now.Add(-day), 3*day, place)

		img := visualize.NewTidal(preds, sunEvents)
		img.SetDate(now)

		var buf bytes.Buffer
		if _, err := img.Encode(&buf); err != nil {
			s.Logger.Error("render tide chart", "station", station, "error", err)
			http.Error(w, "failed to render chart", http.StatusInternalServerError)
			return
		}

		w.Header().Add("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())

		svgCache.Set(station, buf.Bytes())
	})
}
