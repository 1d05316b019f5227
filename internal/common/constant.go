package common

// NameSuffix is the only top-level name the client links under.
const NameSuffix = ".eth"

// SecondsPerYear is used as the default subnode expiry horizon.
const SecondsPerYear = 31_536_000
