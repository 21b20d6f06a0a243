package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahsparrow/fgfs/internal/prox"
)

func TestWriteGagglePage(t *testing.T) {
	hist := prox.Histogram{
		Start:    36000,
		BinWidth: 300,
		Counts:   []int{0, 4, 17, 2},
	}

	path := filepath.Join(t.TempDir(), "gaggle.html")
	require.NoError(t, WriteGagglePage(path, hist))

	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(buf)
	require.True(t, strings.Contains(page, "Gaggle convergence"))
	require.True(t, strings.Contains(page, "10:05:00"))
}

func TestClock(t *testing.T) {
	if got := clock(36093); got != "10:01:33" {
		t.Errorf("clock(36093) = %q", got)
	}
	if got := clock(0); got != "00:00:00" {
		t.Errorf("clock(0) = %q", got)
	}
}
