// Package bridge binds a trusted host adapter into an untrusted guest context.
//
// A Bridge is built once per guest context from a Role and a HostAPI. The capability
// Registry decides which operations the role may see; the installer wraps each one in a
// marshalling closure and the guest engines (see the engines directory) expose the resulting
// Bindings under their wire names. Nothing in this package holds state shared between
// bridges, so two guest contexts never observe each other's effects.
package bridge
