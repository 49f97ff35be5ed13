package schema

import "time"

// timeNow is indirected so tests can substitute a fixed clock when
// asserting on createdAt/updatedAt defaults.
var timeNow = time.Now
