package weft

// Version is the release of the weft module.
const Version = "0.3.0"
