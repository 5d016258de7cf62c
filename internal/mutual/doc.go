// Package mutual derives the (origin, dependent) identity pairs used to
// drive cross-identity visibility checks.
//
// A dependent identity declares that it expects to observe the conversational
// artifacts of an origin identity by enabling mutualization and naming the
// origin's id. FindPairs walks the identity set in source order and matches
// each dependent's link against the set. An empty result is a legitimate
// skip condition for the consuming scenario, not a fault: it only reflects
// the test data that happens to be configured.
package mutual
