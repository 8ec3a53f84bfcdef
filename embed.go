package folio

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// widget.js, the browser side of the search widgets.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
