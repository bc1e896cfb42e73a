// Package htmlview renders an HTML document into a resizable pixel buffer
// through an embedded layout-and-paint engine.
//
// # Overview
//
// A [Controller] owns one [engine.Handle] and one [pixbuf.Buffer]. The host
// window forwards three kinds of events to it: surface geometry
// ([Controller.Resize]), scroll requests ([Controller.ScrollTo]) and frame
// presentation ([Controller.Present]). The controller keeps layout and paint
// to the minimum those events require:
//
//   - layout runs only when the surface width changes
//   - paint runs only when the size or scroll offset differs from the
//     last paint
//   - scroll requests between two presents are coalesced
//
// # Setup
//
// [Open] runs the whole first-run pipeline: it extracts the asset archive
// (package assets), configures the engine in the required order
// ([Bootstrapper]), loads the document and starts the controller:
//
//	soft.Register(engine.Default())
//	if err := engine.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	h, err := engine.New("soft", pixbuf.RGBA32)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c, err := htmlview.Open(ctx, h, htmlview.Setup{
//	    ArchivePath: "assets.zip",
//	    TargetDir:   cacheDir,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	c.Resize(800, 600)
//	c.ScrollTo(0, 120)
//	buf, err := c.Present()
//
// # Errors
//
// Provisioning and bootstrap failures are terminal for a controller: it
// moves to StateFailed and Present returns the failure. Engine failures
// during layout or paint are reported as [*RenderError] and leave the
// viewport unchanged.
//
// # Logging
//
// htmlview is silent by default. Call [SetLogger] to receive log/slog
// records from the controller and its sub-packages.
package htmlview
