package cache

import "errors"

// ErrIncompleteAuditTrail is returned by Client.Upload when the audit
// trail is missing required fields (§3: "Without a full audit trail an
// artifact must not be uploaded nor shared").
var ErrIncompleteAuditTrail = errors.New("incomplete audit trail")

// ErrNotFound is returned by Client.Download when no configured backend
// has the requested Build-Id.
var ErrNotFound = errors.New("artifact not found")
