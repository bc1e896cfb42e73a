// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package assets extracts the packaged asset archive on first run.
//
// The archive holds two subtrees, assets/data (master.css, test.html) and
// assets/fonts (fonts.conf and font files). They are materialized verbatim
// under a writable directory:
//
//	var p assets.Provisioner
//	paths, err := p.Ensure(ctx, "app.zip", cacheDir)
//	if err != nil {
//	    return err
//	}
//	css, err := assets.ReadText(nil, paths.MasterStylesheet())
package assets
