//go:build !linux

package capture

import (
	"context"
	"fmt"
)

const DefaultDevice = ""

// V4L2Opener always fails away from Linux, use a still directory instead.
func V4L2Opener(path string) Opener {
	return func(ctx context.Context, res Resolution) (Stream, error) {
		return nil, fmt.Errorf("v4l2 camera %q: %w", path, ErrUnsupported)
	}
}
