package track_test

import (
	"testing"

	"github.com/okian/orientbot/internal/domain/track"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given the track catalogue", t, func() {
		Convey("When parsing every known label", func() {
			for _, tr := range track.All() {
				got, ok := track.Parse(tr.String())
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, tr)
			}
		})

		Convey("When parsing an unknown label", func() {
			_, ok := track.Parse("Sport")
			So(ok, ShouldBeFalse)
		})

		Convey("When parsing a label with different case", func() {
			_, ok := track.Parse("sciences")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestSubjects(t *testing.T) {
	Convey("Given a known track", t, func() {
		So(track.Sciences.Subjects(), ShouldResemble, track.Subjects{
			"Mathématiques", "Physique", "Sciences de la Vie et de la Terre", "Technique",
		})
		So(track.Technology.Subjects()[1], ShouldEqual, "Informatique")
	})

	Convey("Given an unknown label", t, func() {
		So(track.SubjectsFor("Sport"), ShouldResemble, track.Subjects{
			"Matière 1", "Matière 2", "Matière 3", "Matière 4",
		})
	})

	Convey("Given the list of tracks", t, func() {
		all := track.All()
		So(len(all), ShouldEqual, 4)
		So(all[0], ShouldEqual, track.Sciences)

		Convey("Then mutating the result does not change the catalogue", func() {
			all[0] = "Sport"
			So(track.All()[0], ShouldEqual, track.Sciences)
		})
	})
}
