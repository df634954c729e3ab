/*
Package streaming delivers image bodies to HTTP clients with timeout protection.

The catalog server runs without a global write timeout because imports
execute inside the request. Thumbnails and previews are written through a
TimeoutWriter instead, so a slow or vanished client is cut off after
WriteTimeout per chunk rather than pinning a handler goroutine.

# Usage

	var buf bytes.Buffer
	if err := img.EncodeJPEG(&buf, 0, 90); err != nil {
		return err
	}
	err := streaming.ServeBytes(r.Context(), w, "image/jpeg", buf.Bytes(), streaming.DefaultConfig())
	if errors.Is(err, streaming.ErrClientGone) {
		// not a server error
	}

# Errors

ErrWriteTimeout reports a chunk that did not complete in time; the writer
closes itself and later writes return ErrStreamCanceled. ErrClientGone
reports a canceled request context.
*/
package streaming
