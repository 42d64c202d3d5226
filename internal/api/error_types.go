package api

// HeaderResultKind is the HTTP header key used to convey the kind of a tool call result.
const HeaderResultKind = "Fingate-Result-Kind"

// HeaderFallbackReason is the HTTP header key used to convey why fallback data was served.
const HeaderFallbackReason = "Fingate-Fallback-Reason"
