// Package registry loads and validates the declarative set of application
// identities that the harness simulates when calling the target API.
//
// The identity source is a YAML document (apps.yaml by default). Each record
// describes one simulated caller: its role grants, its subscription key, its
// OAuth configuration and optional mutualization link. The registry validates
// every record at load time and aborts the whole load on the first violation,
// so that test suites always run against an enumerable, consistent identity
// set.
//
// Loading is idempotent: the first Load parses and validates the source, every
// subsequent call returns the cached set. Filtering is a pure function over
// the loaded set and preserves source order:
//
//	reg := registry.New("apps.yaml")
//	apps, err := reg.Filter(
//		registry.WithRole("crm_visit_report"),
//		registry.WithPriority(registry.PriorityApplication),
//	)
package registry
