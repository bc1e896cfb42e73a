// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpuhost binds an htmlview Controller to a gogpu window.
//
// The data flow is:
//
//	window events -> Controller (layout, paint) -> pixbuf.Buffer -> GPU texture -> window
//
// # Usage
//
//	h, err := gpuhost.New(ctrl)
//	if err != nil { ... }
//	defer h.Close()
//	h.Attach(app.EventSource(), app.ScrollEventSource(), app.WindowProvider())
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    _ = h.RenderTo(dc.AsTextureDrawer())
//	})
//
// The texture is created lazily by the first RenderTo and uploaded again only
// when the controller painted since the previous frame.
//
// # Integration Without Circular Imports
//
// The package depends only on the gpucontext interfaces, never on gogpu.
//
// Host is NOT safe for concurrent use. Call it from the window's event
// thread.
package gpuhost
