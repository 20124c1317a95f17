package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

const fakeTool = `#!/bin/sh
read answer
[ "$answer" = "y" ] || { echo "no confirmation" >&2; exit 3; }
dir="$(dirname "$0")/data/dcm/dicomresults/$2/mp4s"
mkdir -p "$dir"
echo "converting $1"
: > "$dir/$(basename "$1" .dcm).mp4"
`

func writeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "DICOMTestExe")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConverterPaths(t *testing.T) {
	Convey("Given a converter for A2C views", t, func() {
		c := &Converter{
			Executable: "/opt/tools/DICOMTestExe",
			Mode:       "A2C",
			Filters:    []string{".dcm"},
			Fs:         afero.NewMemMapFs(),
		}

		Convey("It accepts only DICOM files", func() {
			So(c.Accepts("/scans/heart.dcm"), ShouldBeTrue)
			So(c.Accepts("/scans/HEART.DCM"), ShouldBeTrue)
			So(c.Accepts("/scans/heart.mp4"), ShouldBeFalse)
			So(c.Accepts("/scans/heart"), ShouldBeFalse)
		})

		Convey("Without filters it accepts anything", func() {
			c.Filters = nil
			So(c.Accepts("/scans/heart.mp4"), ShouldBeTrue)
		})

		Convey("The default output sits next to the executable", func() {
			out, err := c.OutputPath("/scans/PWHOR190734217S.dcm")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, filepath.Clean("/opt/tools/data/dcm/dicomresults/A2C/mp4s/PWHOR190734217S.mp4"))
		})

		Convey("A custom template can use every field", func() {
			c.Output = "/out/{{.Mode}}-{{.Stem}}.mp4"
			out, err := c.OutputPath("/scans/heart.dcm")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, filepath.Clean("/out/A2C-heart.mp4"))
		})

		Convey("A broken template is an error", func() {
			c.Output = "{{.Nope}"
			_, err := c.OutputPath("/scans/heart.dcm")
			So(err, ShouldNotBeNil)
		})

		Convey("Run rejects other file types before touching anything", func() {
			_, err := c.Run(context.Background(), "/scans/heart.png")
			So(errors.Is(err, ErrRejectedInput), ShouldBeTrue)
		})

		Convey("Run fails when the executable is missing", func() {
			_, err := c.Run(context.Background(), "/scans/heart.dcm")
			So(errors.Is(err, ErrNotExecutable), ShouldBeTrue)
		})

		Convey("Run fails when the executable is a directory", func() {
			So(c.Fs.MkdirAll(c.Executable, 0o755), ShouldBeNil)
			_, err := c.Run(context.Background(), "/scans/heart.dcm")
			So(errors.Is(err, ErrNotExecutable), ShouldBeTrue)
		})
	})
}

func TestConverterRun(t *testing.T) {
	Convey("Given a converter tool that is not yet executable", t, func() {
		tool := writeTool(t, fakeTool)
		c := &Converter{Executable: tool, Mode: "A2C", Filters: []string{".dcm"}}

		Convey("Run makes it executable, confirms its prompt and returns the video path", func() {
			out, err := c.Run(context.Background(), "/scans/heart.dcm")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, filepath.Join(filepath.Dir(tool), "data/dcm/dicomresults/A2C/mp4s/heart.mp4"))

			info, err := os.Stat(tool)
			So(err, ShouldBeNil)
			So(info.Mode().Perm()&0o111, ShouldEqual, os.FileMode(0o111))

			_, err = os.Stat(out)
			So(err, ShouldBeNil)
		})

		Convey("Arguments are not interpreted by a shell", func() {
			out, err := c.Run(context.Background(), "/scans/a b;echo x.dcm")
			So(err, ShouldBeNil)
			So(filepath.Base(out), ShouldEqual, "a b;echo x.mp4")
		})
	})

	Convey("Given a tool that fails", t, func() {
		tool := writeTool(t, "#!/bin/sh\necho broken >&2\nexit 4\n")
		c := &Converter{Executable: tool, Mode: "A2C"}

		Convey("The exit status is reported", func() {
			_, err := c.Run(context.Background(), "/scans/heart.dcm")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "status 4")
			So(errors.Is(err, ErrOutputMissing), ShouldBeFalse)
		})
	})

	Convey("Given a tool that succeeds without output", t, func() {
		tool := writeTool(t, "#!/bin/sh\nexit 0\n")
		c := &Converter{Executable: tool, Mode: "A2C"}

		Convey("Run reports the missing output", func() {
			_, err := c.Run(context.Background(), "/scans/heart.dcm")
			So(errors.Is(err, ErrOutputMissing), ShouldBeTrue)
		})
	})

	Convey("Given a tool that hangs", t, func() {
		tool := writeTool(t, "#!/bin/sh\nexec sleep 30\n")
		c := &Converter{Executable: tool, Mode: "A2C"}

		Convey("Cancelling the context stops it", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			_, err := c.Run(ctx, "/scans/heart.dcm")
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})
	})
}

func TestYes(t *testing.T) {
	Convey("yes keeps alternating across reads of odd sizes", t, func() {
		y := &yes{}
		a := make([]byte, 3)
		b := make([]byte, 3)
		_, _ = y.Read(a)
		_, _ = y.Read(b)
		So(string(a)+string(b), ShouldEqual, "y\ny\ny\n")
	})
}
