package segment

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// forEachRowBand 把 [0,height) 切成若干行带并发执行 fn(y0, y1)
// 各行带只写自己的输出区间，互不重叠
func forEachRowBand(height, workers int, fn func(y0, y1 int)) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > height {
		workers = height
	}
	if workers <= 1 {
		fn(0, height)
		return
	}

	band := (height + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < height; y0 += band {
		y0, y1 := y0, min(y0+band, height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
