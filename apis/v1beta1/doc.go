// Package v1beta1 contains the GraphQL API and Upstream shapes the console exchanges with the
// gateway control plane. The JSON layout follows the control plane's RPC objects: maps are
// delivered as ordered lists of [key, value] pairs.
package v1beta1
