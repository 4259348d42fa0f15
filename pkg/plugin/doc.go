// Package plugin defines the contract between JetTower and the host runtime's
// plugin registry.
//
// The host owns a set of named plugin instances. Each instance knows the live
// GraphQL endpoint of one Tower deployment. JetTower only ever needs two
// things from the host:
//
//   - Registry.Lookup resolves an instance by name and fails fast with a
//     *NotFoundError when the name is unknown.
//   - Instance.Endpoint yields the instance's current GraphQL endpoint URL.
//
// StaticRegistry is an in-process implementation used by the jettower CLI and
// by tests. Hosts with their own registry implement the two interfaces
// directly or adapt a callback with EndpointFunc.
//
//	reg := plugin.NewStaticRegistry()
//	reg.Register("towerInstance", "https://tower.example.com/graphql")
//
//	inst, err := reg.Lookup("towerInstance")
//	if plugin.IsNotFound(err) {
//	    // configuration error
//	}
//	endpoint, err := inst.Endpoint(ctx)
package plugin
