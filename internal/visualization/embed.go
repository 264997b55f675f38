package visualization

import "embed"

// templates holds walk.html.tmpl, the page shared by RenderHTML and the
// walk server.
//
//go:embed templates/*
var templates embed.FS
