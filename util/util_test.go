package util

import (
	"bytes"
	"testing"

	"github.com/bbdl-cli/bbdl/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("file:name?.mp3"), ShouldEqual, "file_name_.mp3")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("Episode 12: The  End"), ShouldEqual, "Episode_12_The_End")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-file-name-"), ShouldEqual, "file-name")
		})
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "episode", "episodes"), ShouldEqual, "1 episode")
		So(Quantify(0, "episode", "episodes"), ShouldEqual, "0 episodes")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("history"), ShouldEqual, "History")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("out/ep-01.mp3"), ShouldEqual, "ep-01")
		So(FileStem("file"), ShouldEqual, "file")
	})
}

func TestMax(t *testing.T) {
	Convey("Max", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Max[int](), ShouldEqual, 0)
	})
}

func TestPrintErasable(t *testing.T) {
	Convey("PrintErasable writes and blanks the message", t, func() {
		var buf bytes.Buffer
		erase := PrintErasable(&buf, "working")
		So(buf.String(), ShouldEqual, "\rworking")
		erase()
		So(buf.String(), ShouldEqual, "\rworking\r       \r")
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete removes files and directories", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		lo.Must0(fs.MkdirAll("/tmp/dir/sub", 0o755))
		lo.Must0(fs.WriteFile("/tmp/file", []byte("x"), 0o644))

		So(Delete("/tmp/file"), ShouldBeNil)
		So(lo.Must(fs.Exists("/tmp/file")), ShouldBeFalse)

		So(Delete("/tmp/dir"), ShouldBeNil)
		So(lo.Must(fs.Exists("/tmp/dir")), ShouldBeFalse)

		So(Delete("/tmp/missing"), ShouldNotBeNil)
	})
}
