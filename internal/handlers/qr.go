package handlers

import (
	"encoding/base64"
	"html/template"
	"net/http"

	"github.com/webcungs/order-relay/internal/errors"
	"rsc.io/qr"
)

var qrPage = template.Must(template.New("qr").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>WhatsApp Login</title>
  <style>
    body { font-family: sans-serif; text-align: center; padding-top: 3em; }
    img { image-rendering: pixelated; width: 320px; height: 320px; }
  </style>
</head>
<body>
  <h1>Scan with WhatsApp</h1>
  <p>WhatsApp &gt; Settings &gt; Linked Devices &gt; Link a Device</p>
  <img src="data:image/png;base64,{{.}}" alt="QR code">
</body>
</html>
`))

// QR serves the login page. Before the first QR event there is nothing to
// show; afterwards the latest cached code is rendered as an inline PNG.
func (h *Handler) QR(w http.ResponseWriter, r *http.Request) {
	code, ok := h.store.QR()
	if !ok {
		h.writeText(w, "QR code not yet available. Retry in a few seconds.", http.StatusOK)
		return
	}

	img, err := qr.Encode(code, qr.M)
	if err != nil {
		h.writeAppError(w, errors.InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := qrPage.Execute(w, base64.StdEncoding.EncodeToString(img.PNG())); err != nil {
		h.log.Error("Failed to render QR page", err)
	}
}
