package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	service "github.com/okian/orientbot/internal/app"
	"github.com/okian/orientbot/internal/domain/track"
)

// TrackLister supplies the known tracks.
type TrackLister interface {
	Tracks() []TrackInfo
}

// TrackInfo mirrors the service track shape.
type TrackInfo = service.TrackInfo

type trackResponse struct {
	Track    string    `json:"track"`
	Subjects [4]string `json:"subjects"`
}

// TracksHandler handles track listing requests.
type TracksHandler struct {
	deps TrackLister
}

// NewTracksHandler creates a new tracks handler.
func NewTracksHandler(deps TrackLister) *TracksHandler {
	return &TracksHandler{deps: deps}
}

// HandleListTracks handles GET /tracks requests.
func (h *TracksHandler) HandleListTracks(w http.ResponseWriter, r *http.Request) {
	infos := h.deps.Tracks()
	out := make([]trackResponse, len(infos))
	for i, t := range infos {
		out[i] = trackResponse{Track: string(t.Track), Subjects: t.Subjects}
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleSubjects handles GET /tracks/:track/subjects requests. Unknown tracks
// get the generic subject labels.
func (h *TracksHandler) HandleSubjects(w http.ResponseWriter, r *http.Request) {
	label := httprouter.ParamsFromContext(r.Context()).ByName("track")
	_, known := track.Parse(label)
	writeJSON(w, http.StatusOK, struct {
		trackResponse
		Known bool `json:"known"`
	}{
		trackResponse: trackResponse{Track: label, Subjects: track.SubjectsFor(label)},
		Known:         known,
	})
}
