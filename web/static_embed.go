package web

import "embed"

// StaticFS holds the page script and stylesheet served under /static/.
//
//go:embed static/css/*.css static/js/*.js
var StaticFS embed.FS
