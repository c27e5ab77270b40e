package pathcache

import "codeberg.org/mutker/droidmon/internal/errors"

// ErrPathNotFound means no candidate passed the probe. It stays in effect
// until Invalidate or Prime.
const ErrPathNotFound = errors.ErrorCode("path_not_found")
