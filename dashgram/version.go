// Package dashgram contains metadata shared by all the packages that make up
// the Dashgram Go client.
package dashgram

// Version is the client version sent to the backend on every delivery
const Version = "1.2.0"

// ClientMetadata holds the information submitted as headers alongside event bulks
type ClientMetadata struct {
	SDKVersion  string
	MachineIP   string
	MachineName string
}
