package steelcast

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// titleInterval is how often the window title statistics refresh.
const titleInterval = time.Second

// titleStats accumulates frame times and formats them into the window
// title, with locale-grouped numbers.
type titleStats struct {
	printer *message.Printer
	elapsed time.Duration
	frames  int
}

func newTitleStats(tag language.Tag) *titleStats {
	return &titleStats{printer: message.NewPrinter(tag)}
}

// add records one frame. It returns a new title once per titleInterval.
func (s *titleStats) add(base string, dt time.Duration, total uint64, draws uint64) (string, bool) {
	s.elapsed += dt
	s.frames++
	if s.elapsed < titleInterval {
		return "", false
	}
	fps := float64(s.frames) / s.elapsed.Seconds()
	s.elapsed, s.frames = 0, 0
	return s.printer.Sprintf("%s | frame %d | %d draws | %.1f fps", base, total, draws, fps), true
}
