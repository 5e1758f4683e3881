// Package dashboard embeds the devpulse landing page template.
//
// The page is an html/template executed with a title, a subtitle and a list
// of service links. Its status widget reads /api/status on load and then
// follows /api/sse.
package dashboard

import "embed"

// Assets holds assets/index.html.
//
//go:embed assets/*
var Assets embed.FS
