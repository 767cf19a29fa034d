package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

// errBadBody is returned for request bodies that are not well-formed JSON of
// the expected shape.
var errBadBody = errors.New("invalid request body")

// writeJSON encodes the body produced by fn with the given status.
func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	var e jx.Encoder
	fn(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError answers with {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("error", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}

// writeMessage answers with {"success": true, "message": msg}.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("success", func(e *jx.Encoder) { e.Bool(true) })
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}

// decodeObject reads the request body and calls fn for every top-level field.
// Bodies that are empty, oversized or not a JSON object yield errBadBody.
func decodeObject(w http.ResponseWriter, r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(errBadBody, err.Error())
	}
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return errBadBody
	}
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		return fn(d, string(key))
	}); err != nil {
		var fe *fieldError
		if errors.As(err, &fe) {
			return fe
		}
		return errors.Wrap(errBadBody, err.Error())
	}
	return nil
}

// fieldError reports a structurally valid body with an invalid field.
type fieldError struct {
	msg string
}

func (e *fieldError) Error() string { return e.msg }

// optStr decodes a string that may be null. Null yields "".
func optStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

func encodeMoney(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.StringFixed(2)))
}

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339))
}
