// File: utils/constants.go
package utils

import "time"

// LockPrefix is the prefix used for Redis per-service mutex keys.
const LockPrefix = "lock:"

// LockTTL bounds how long a per-service mutex may be held before it is
// reclaimed, in case a holder dies mid-operation.
const LockTTL = 15 * time.Second

// DateLayout is the canonical date format used across slot records.
const DateLayout = "2006-01-02"
