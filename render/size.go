// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "fmt"

// Size is a width and height in pixels.
type Size struct {
	Width  int
	Height int
}

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Aspect returns width divided by height, or 1 for an empty size.
func (s Size) Aspect() float32 {
	if s.Empty() {
		return 1
	}
	return float32(s.Width) / float32(s.Height)
}

// String formats the size as WxH.
func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }
