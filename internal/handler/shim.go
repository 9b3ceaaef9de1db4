package handler

import (
	"html/template"
	"net/http"
)

// shimTemplate is the intermediate hand-off page: it tries to open the
// messenger app via the deep link and leaves a tap target as fallback.
var shimTemplate = template.Must(template.New("shim").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2;url={{.Destination}}">
<title>Opening Telegram…</title>
<style>
body{font-family:sans-serif;display:flex;align-items:center;justify-content:center;height:100vh;margin:0}
a{color:#2481cc;text-decoration:none;font-size:1.2em}
</style>
</head>
<body>
<p><a href="{{.Destination}}">Tap here if Telegram does not open automatically</a></p>
<script>window.location.href={{.Destination}};</script>
</body>
</html>
`))

// renderShim writes the hand-off page for a destination URL.
func (h *RedirectHandler) renderShim(w http.ResponseWriter, destination string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	data := struct{ Destination string }{Destination: destination}
	if err := shimTemplate.Execute(w, data); err != nil {
		h.logger.Error("shim render failed", "error", err)
	}
}
