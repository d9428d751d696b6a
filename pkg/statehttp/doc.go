// Package statehttp serves a state machine's collection operations over
// HTTP with a chi router.
//
// Responses use a JSON envelope with data, meta and error keys. Machine
// errors map to statuses as follows:
//
//	not found, unknown transition   404
//	invalid transition              409
//	guard rejected                  422, with field details for field guards
//	lookup or persistence failure   500
package statehttp
