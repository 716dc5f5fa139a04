package scopes

import _ "embed"

// Version is the release of the scopes gateway, read from the VERSION file.
//
//go:embed VERSION
var Version string
