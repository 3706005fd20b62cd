// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package slat

import (
	"errors"
	"fmt"
	"strings"
)

// Device-level failures surfaced by Update and Render. Callers recover from
// ErrSurfaceLost and ErrSurfaceOutdated by calling Resize with the current
// dimensions; ErrOutOfMemory is fatal. Any other device error has already
// been logged and the frame skipped.
var (
	ErrSurfaceLost     = errors.New("surface lost")
	ErrSurfaceOutdated = errors.New("surface outdated")
	ErrOutOfMemory     = errors.New("out of GPU memory")
	ErrTimeout         = errors.New("surface acquire timed out")
)

// RecoverableByResize reports whether the caller should retry the frame
// after reconfiguring the surface.
func RecoverableByResize(err error) bool {
	return errors.Is(err, ErrSurfaceLost) || errors.Is(err, ErrSurfaceOutdated)
}

// classifyDeviceError maps an error reported by the graphics binding onto
// the engine's error taxonomy. The binding reports failure classes in
// message text only, so classification is by substring.
func classifyDeviceError(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "outdated"):
		return fmt.Errorf("%s: %w", op, ErrSurfaceOutdated)
	case strings.Contains(msg, "lost"):
		return fmt.Errorf("%s: %w", op, ErrSurfaceLost)
	case strings.Contains(msg, "out of memory") || strings.Contains(msg, "outofmemory"):
		return fmt.Errorf("%s: %w", op, ErrOutOfMemory)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
