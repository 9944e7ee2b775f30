package danpftp

// SourceFunc produces up to len(buf) bytes at the given byte offset for a
// transmit. It sets *more to false when no further bytes exist after this
// call; more is true on entry. Returning 0 terminates the transfer at the
// current offset without sending a further DATA packet (see the Open
// Questions resolution: no zero-length LAST_CHUNK packet is emitted). A
// negative-status error aborts the transfer and is propagated verbatim.
//
// This replaces the C API's (handle, offset, data, length, *more,
// user_data) callback pointer: callers close over whatever context they
// need instead of passing an opaque user_data pointer the core would
// otherwise have to carry without interpreting.
type SourceFunc func(offset int, buf []byte, more *bool) (int, error)

// SinkFunc consumes payload produced for a receive at the given byte
// offset. more reports whether further chunks are expected after this
// one. A non-nil error aborts the transfer and is propagated verbatim.
type SinkFunc func(offset int, payload []byte, more bool) error
