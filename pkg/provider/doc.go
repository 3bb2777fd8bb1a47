// Package provider turns raw generative output into domain results and ships
// provider decorators that do not depend on any vendor SDK.
package provider
