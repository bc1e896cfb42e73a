// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package engine defines the boundary to an HTML/CSS layout-and-paint
// engine and the registry that creates engines.
//
// An Engine is never used directly. It is owned by a Handle, which forwards
// commands, turns engine-reported failures into errors, and destroys the
// engine exactly once:
//
//	if err := engine.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	h, err := engine.New("soft", pixbuf.RGBA32)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
// Init is the process-wide initialization barrier. It runs every backend's
// Load hook once and must be called explicitly before the first New.
package engine
