package export

import "errors"

// Export failures are fatal to the export attempt only, never to the session.
var (
	// ErrMissingSource: no drawing surface or no narration track to capture.
	ErrMissingSource = errors.New("export: источник для захвата недоступен")

	// ErrEncodingUnsupported: no usable recorder could be constructed.
	ErrEncodingUnsupported = errors.New("export: кодирование не поддерживается в этом окружении")
)
