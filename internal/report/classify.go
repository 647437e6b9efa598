package report

import "github.com/asterview/asterview/internal/types"

// The PBX carries no structured internal/external flag, so direction is
// inferred from number lengths: external numbers are longer than internal
// queue extensions.

// IsInbound reports whether the CDR row looks like an external customer
// calling an internal extension. A missing source or destination excludes
// the call.
func IsInbound(rec types.CallDetailRecord, minLength int) bool {
	if rec.Source == "" || rec.Destination == "" {
		return false
	}
	return len(rec.Source) > minLength && len(rec.Destination) <= minLength
}

// IsOutbound reports whether the CDR row looks like an internal party
// calling an external number.
func IsOutbound(rec types.CallDetailRecord, minLength int) bool {
	return rec.OutboundCallerNumber != "" && len(rec.Destination) > minLength
}
