package resources

import (
	"io/fs"
	"strings"
	"testing"
)

func TestShadersEmbedded(t *testing.T) {
	for _, name := range []string{Basic, BasicVertex, BasicFragment} {
		src, err := fs.ReadFile(Shaders, name)
		if err != nil {
			t.Errorf("ReadFile(%s): %v", name, err)
			continue
		}
		if len(src) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestBasicHasBothStages(t *testing.T) {
	src, err := fs.ReadFile(Shaders, Basic)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"fn vs_main", "fn fs_main"} {
		if !strings.Contains(string(src), want) {
			t.Errorf("%s missing %q", Basic, want)
		}
	}
}
