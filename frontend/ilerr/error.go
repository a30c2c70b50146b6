package ilerr

import (
	"log/slog"
	"strconv"
)

// Errors accumulates diagnostics in the order they are found.
// A nil *Errors holds no diagnostics and every method accepts it.
type Errors struct {
	errs []IleError
}

// With appends errs, allocating the collection when r is nil
func (r *Errors) With(errs ...IleError) *Errors {
	if r == nil {
		r = &Errors{}
	}
	r.errs = append(r.errs, errs...)
	return r
}

// Merge appends the diagnostics of other after those of r
func (r *Errors) Merge(other *Errors) *Errors {
	if other.Len() == 0 {
		return r
	}
	if r == nil {
		return &Errors{errs: append([]IleError(nil), other.errs...)}
	}
	return r.With(other.errs...)
}

func (r *Errors) Errors() []IleError {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) Len() int {
	if r == nil {
		return 0
	}
	return len(r.errs)
}

func (r *Errors) HasError() bool { return r.Len() > 0 }

// Codes lists the code of every diagnostic, in order
func (r *Errors) Codes() []ErrCode {
	if r.Len() == 0 {
		return nil
	}
	codes := make([]ErrCode, len(r.errs))
	for i, err := range r.errs {
		codes[i] = err.Code()
	}
	return codes
}

func (r *Errors) LogValue() slog.Value {
	attrs := make([]slog.Attr, r.Len())
	for i, err := range r.Errors() {
		attrs[i] = slog.String(strconv.Itoa(i), FormatWithCode(err))
	}
	return slog.GroupValue(attrs...)
}
