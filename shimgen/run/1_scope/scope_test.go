package scope_test

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	scope "github.com/toejough/shimtest/shimgen/run/1_scope"
)

func TestDefault_ModuleRoot(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	files := fakeFiles{"/work/app/go.mod": "module example.com/app\n\ngo 1.25\n"}

	got, err := scope.Default("/work/app", files)

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal("example.com/app"))
}

func TestDefault_NestedPackage(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	files := fakeFiles{"/work/app/go.mod": "module example.com/app\n"}

	got, err := scope.Default("/work/app/internal/clock", files)

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal("example.com/app/internal/clock"))
}

func TestDefault_NearestModuleWins(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	files := fakeFiles{
		"/work/go.mod":           "module example.com/outer\n",
		"/work/tools/gen/go.mod": "module example.com/gen\n",
	}

	got, err := scope.Default("/work/tools/gen/cmd", files)

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal("example.com/gen/cmd"))
}

func TestDefault_NoModule(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := scope.Default("/nowhere/pkg", fakeFiles{})

	g.Expect(err).To(MatchError(ContainSubstring("not in a module")))
}

func TestDefault_MissingModuleDirective(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := scope.Default("/work", fakeFiles{"/work/go.mod": "go 1.25\n"})

	g.Expect(err).To(MatchError(ContainSubstring("no module directive")))
}

func TestDefault_ReadErrorsOtherThanMissingFail(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := scope.Default("/work", brokenReader{})

	g.Expect(err).To(MatchError(ContainSubstring("permission denied")))
}

func TestDefault_AppendsRelativeDirProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		segments := rapid.SliceOfN(rapid.StringMatching(`[a-z][a-z0-9]{0,6}`), 0, 4).Draw(rt, "segments")
		files := fakeFiles{"/root/mod/go.mod": "module example.com/mod\n"}

		dir := filepath.Join(append([]string{"/root/mod"}, segments...)...)

		got, err := scope.Default(dir, files)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}

		want := "example.com/mod"
		for _, segment := range segments {
			want += "/" + segment
		}

		if got != want {
			rt.Fatalf("got %q, want %q", got, want)
		}
	})
}

type brokenReader struct{}

func (brokenReader) ReadFile(string) ([]byte, error) {
	return nil, fs.ErrPermission
}

type fakeFiles map[string]string

func (f fakeFiles) ReadFile(name string) ([]byte, error) {
	content, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", name, fs.ErrNotExist)
	}

	return []byte(content), nil
}
