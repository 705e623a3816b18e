package ingest

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

// ProgressManager renders insert progress bars; a disabled manager hands out no-op bars.
type ProgressManager struct {
	container *mpb.Progress
	enabled   bool
	mu        sync.Mutex
}

type ProgressBar struct {
	bar     *mpb.Bar
	enabled bool
}

func NewProgressManager(config ProgressConfig) *ProgressManager {
	if !config.Enabled {
		return &ProgressManager{enabled: false}
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	return &ProgressManager{
		container: mpb.New(
			mpb.WithOutput(writer),
			mpb.WithRefreshRate(120*time.Millisecond),
		),
		enabled: true,
	}
}

func (pm *ProgressManager) CreateBar(total int, description string) *ProgressBar {
	if pm == nil || !pm.enabled || pm.container == nil {
		return &ProgressBar{enabled: false}
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	bar := pm.container.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(description+" ", decor.WC{W: len(description) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.1f", decor.WCSyncSpace),
			decor.OnComplete(
				decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WCSyncWidth), " done",
			),
		),
	)
	return &ProgressBar{bar: bar, enabled: true}
}

// SetCurrent moves the bar to done, used as a store batch callback.
func (pb *ProgressBar) SetCurrent(done int) {
	if pb.enabled && pb.bar != nil {
		pb.bar.SetCurrent(int64(done))
	}
}

func (pb *ProgressBar) Increment() {
	if pb.enabled && pb.bar != nil {
		pb.bar.Increment()
	}
}

func (pb *ProgressBar) Complete() {
	if pb.enabled && pb.bar != nil {
		pb.bar.SetTotal(pb.bar.Current(), true)
	}
}

func (pm *ProgressManager) Wait() {
	if pm != nil && pm.enabled && pm.container != nil {
		pm.container.Wait()
	}
}

func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// ShouldShowProgress is true when forced or when stderr is a terminal.
func ShouldShowProgress(forced bool) bool {
	return forced || IsTTY(os.Stderr)
}
