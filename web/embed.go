package web

import "embed"

// Templates embeds the HTML templates fed to the PDF renderer.
//
//go:embed templates/reports/*.html
var Templates embed.FS
