// Package track holds the closed set of academic tracks and the subject
// labels shown for each of them.
package track

// Track is one of the four academic specialisation branches.
type Track string

// Known tracks.
const (
	Sciences   Track = "Sciences"
	Lettres    Track = "Lettres"
	Economie   Track = "Économie et services"
	Technology Track = "Technologie de l'informatique"
)

// Subjects is the ordered list of four subject labels for a track. The
// position matches the position of the corresponding score.
type Subjects [4]string

// ordered keeps display order stable.
var ordered = []Track{Sciences, Lettres, Economie, Technology}

var subjects = map[Track]Subjects{
	Sciences:   {"Mathématiques", "Physique", "Sciences de la Vie et de la Terre", "Technique"},
	Lettres:    {"Français", "Arabe", "Histoire", "Géographie"},
	Economie:   {"Mathématiques", "Anglais", "Histoire", "Géographie"},
	Technology: {"Mathématiques", "Informatique", "Physique", "Technique"},
}

// fallback labels are used for display when the track is unknown.
var fallback = Subjects{"Matière 1", "Matière 2", "Matière 3", "Matière 4"}

// Parse returns the Track for an exact label match.
func Parse(label string) (Track, bool) {
	t := Track(label)
	_, ok := subjects[t]
	return t, ok
}

// All returns the known tracks in display order.
func All() []Track {
	out := make([]Track, len(ordered))
	copy(out, ordered)
	return out
}

// Subjects returns the subject labels of t.
func (t Track) Subjects() Subjects {
	if s, ok := subjects[t]; ok {
		return s
	}
	return fallback
}

// SubjectsFor returns the subject labels for a raw label, falling back to
// generic labels when it does not name a known track.
func SubjectsFor(label string) Subjects {
	return Track(label).Subjects()
}

// String implements fmt.Stringer.
func (t Track) String() string { return string(t) }
