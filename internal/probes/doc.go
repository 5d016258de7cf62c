// Package probes exercises the documented endpoints of the target chatbot
// API through the request gateway.
//
// Each probe wraps one endpoint with a typed request and response, leaving
// status-code assertions to the consuming test: a 401/403 on a role an
// identity was never granted is an expected business outcome, not a harness
// fault. Conversation ids obtained from the id-issuing endpoint are
// transient; they exist only to carry one scenario and are discarded at test
// end.
package probes
