package models

import "errors"

// ErrAuditImmutable is returned by hooks that guard the append-only audit table.
var ErrAuditImmutable = errors.New("audit log entries are immutable")
